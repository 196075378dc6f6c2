package sparql

import "strings"

// UpdateBuilder accumulates ground statements for one combined update: an
// optional delete block followed by an optional insert block. Either block
// is omitted when empty. Exactly one update request is sent per mutating
// operation, so a failed dispatch leaves the store untouched.
type UpdateBuilder struct {
	deletes []Triple
	inserts []Triple
}

// NewUpdateBuilder returns an empty builder.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{}
}

// Delete adds ground statements to the delete block.
func (b *UpdateBuilder) Delete(triples ...Triple) {
	b.deletes = append(b.deletes, triples...)
}

// Insert adds ground statements to the insert block.
func (b *UpdateBuilder) Insert(triples ...Triple) {
	b.inserts = append(b.inserts, triples...)
}

// Empty reports whether the builder holds no statements at all. Callers
// skip the commit round trip entirely for empty updates.
func (b *UpdateBuilder) Empty() bool {
	return len(b.deletes) == 0 && len(b.inserts) == 0
}

// DeleteCount returns the number of statements in the delete block.
func (b *UpdateBuilder) DeleteCount() int { return len(b.deletes) }

// InsertCount returns the number of statements in the insert block.
func (b *UpdateBuilder) InsertCount() int { return len(b.inserts) }

// Build serializes the combined update body. Returns the empty string when
// there is nothing to commit.
func (b *UpdateBuilder) Build() string {
	if b.Empty() {
		return ""
	}
	var sb strings.Builder
	if len(b.deletes) > 0 {
		sb.WriteString("DELETE DATA {\n")
		for _, t := range b.deletes {
			sb.WriteString("  ")
			sb.WriteString(t.String())
			sb.WriteByte('\n')
		}
		sb.WriteString("}")
	}
	if len(b.inserts) > 0 {
		if len(b.deletes) > 0 {
			sb.WriteString(";\n")
		}
		sb.WriteString("INSERT DATA {\n")
		for _, t := range b.inserts {
			sb.WriteString("  ")
			sb.WriteString(t.String())
			sb.WriteByte('\n')
		}
		sb.WriteString("}")
	}
	return sb.String()
}
