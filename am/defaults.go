package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Store defaults: a local triple store with separate query and update
	// endpoints, no auth
	v.SetDefault("store.query_endpoint", fmt.Sprintf("http://localhost:%d/query", DefaultStorePort))
	v.SetDefault("store.update_endpoint", fmt.Sprintf("http://localhost:%d/update", DefaultStorePort))
	v.SetDefault("store.timeout_seconds", 30)

	// Resource description defaults, relative to the working directory
	v.SetDefault("resources.schema_path", "shapes.yaml")
	v.SetDefault("resources.fragment_map_path", "fragments.yaml")
	v.SetDefault("resources.entities_path", "entities.yaml")
	v.SetDefault("resources.query_dir", "queries")

	// Server configuration defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})

	// Logging defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("store.username", "SHEXPOSE_STORE_USERNAME")
	v.BindEnv("store.password", "SHEXPOSE_STORE_PASSWORD")
	v.BindEnv("store.bearer_token", "SHEXPOSE_STORE_BEARER_TOKEN")
}
