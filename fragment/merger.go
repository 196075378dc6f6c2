package fragment

import "strings"

// Merger combines fragment serializations fetched in independent store
// round trips. Each serialization carries its own namespace-prefix header
// before a blank line; headers are deduplicated first-write-wins by prefix
// name, body statements are concatenated without deduplication (triple-set
// semantics tolerate duplicates).
type Merger struct {
	prefixOrder []string
	prefixes    map[string]string // prefix name → full declaration line
	bodies      []string
	statements  int
}

// NewMerger returns an empty merger.
func NewMerger() *Merger {
	return &Merger{prefixes: make(map[string]string)}
}

// Add accumulates one fragment serialization.
func (m *Merger) Add(serialized string) {
	header, body := splitFragment(serialized)

	for _, line := range strings.Split(header, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		name := prefixName(trimmed)
		if name == "" {
			// Non-prefix header line; keep it once verbatim
			name = trimmed
		}
		if _, exists := m.prefixes[name]; !exists {
			m.prefixes[name] = trimmed
			m.prefixOrder = append(m.prefixOrder, name)
		}
	}

	trimmedBody := strings.TrimSpace(body)
	if trimmedBody != "" {
		m.bodies = append(m.bodies, trimmedBody)
		for _, line := range strings.Split(trimmedBody, "\n") {
			l := strings.TrimSpace(line)
			if l != "" && !strings.HasPrefix(l, "#") {
				m.statements++
			}
		}
	}
}

// IsEmpty reports whether no fragment contributed any body statements.
// Drives the 404-versus-200 decision for fetch results.
func (m *Merger) IsEmpty() bool {
	return m.statements == 0
}

// Merged returns one coherent serialization: deduplicated prefix header,
// blank line, concatenated bodies.
func (m *Merger) Merged() string {
	var sb strings.Builder
	for _, name := range m.prefixOrder {
		sb.WriteString(m.prefixes[name])
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for _, body := range m.bodies {
		sb.WriteString(body)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// splitFragment separates the prefix header from the statement body at the
// first blank line. Serializations without a blank line are treated as
// all-body unless every line is a prefix declaration.
func splitFragment(serialized string) (header, body string) {
	if idx := strings.Index(serialized, "\n\n"); idx >= 0 {
		return serialized[:idx], serialized[idx+2:]
	}
	// No blank line: classify line by line
	var headerLines, bodyLines []string
	for _, line := range strings.Split(serialized, "\n") {
		if prefixName(strings.TrimSpace(line)) != "" {
			headerLines = append(headerLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}
	return strings.Join(headerLines, "\n"), strings.Join(bodyLines, "\n")
}

// prefixName extracts the prefix name from a declaration line, or "" when
// the line is not a prefix declaration.
func prefixName(line string) string {
	var rest string
	switch {
	case strings.HasPrefix(line, "@prefix"):
		rest = strings.TrimSpace(strings.TrimPrefix(line, "@prefix"))
	case strings.HasPrefix(line, "PREFIX"):
		rest = strings.TrimSpace(strings.TrimPrefix(line, "PREFIX"))
	default:
		return ""
	}
	name, _, found := strings.Cut(rest, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(name) + ":"
}
