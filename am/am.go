package am

// Config represents the core shexpose configuration
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// StoreConfig configures the SPARQL triple store connection
type StoreConfig struct {
	QueryEndpoint  string `mapstructure:"query_endpoint"`  // SPARQL query endpoint (CONSTRUCT/ASK)
	UpdateEndpoint string `mapstructure:"update_endpoint"` // SPARQL update endpoint
	Username       string `mapstructure:"username"`        // Basic auth username (optional)
	Password       string `mapstructure:"password"`        // Basic auth password (optional)
	BearerToken    string `mapstructure:"bearer_token"`    // Bearer token; takes precedence over basic auth
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // HTTP timeout, 0 = no timeout
}

// ResourcesConfig points at the files describing the exposed resources:
// the shape schema, the attribute-to-fragment map, the entity declarations,
// and the directory of CONSTRUCT query templates.
type ResourcesConfig struct {
	SchemaPath      string `mapstructure:"schema_path"`
	FragmentMapPath string `mapstructure:"fragment_map_path"`
	EntitiesPath    string `mapstructure:"entities_path"`
	QueryDir        string `mapstructure:"query_dir"`
}

// ServerConfig configures the shexpose HTTP server
type ServerConfig struct {
	Port           *int     `mapstructure:"port"` // nil = default 3000, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON      bool `mapstructure:"json"`      // structured JSON output instead of console encoding
	Verbosity int  `mapstructure:"verbosity"` // 0 = info, >= 1 = debug
}

// Server port constants
const (
	DefaultServerPort = 3000 // REST surface
	DefaultStorePort  = 7001 // conventional local triple store port
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
