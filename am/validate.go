package am

import "github.com/tucfis/shexpose/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Store.QueryEndpoint == "" {
		return errors.New("store.query_endpoint cannot be empty")
	}
	if c.Store.UpdateEndpoint == "" {
		return errors.New("store.update_endpoint cannot be empty")
	}

	// Timeout: 0 = no timeout, negative = invalid
	if c.Store.TimeoutSeconds < 0 {
		return errors.Newf("store.timeout_seconds must be >= 0, got %d", c.Store.TimeoutSeconds)
	}

	if c.Resources.SchemaPath == "" {
		return errors.New("resources.schema_path cannot be empty")
	}
	if c.Resources.FragmentMapPath == "" {
		return errors.New("resources.fragment_map_path cannot be empty")
	}
	if c.Resources.EntitiesPath == "" {
		return errors.New("resources.entities_path cannot be empty")
	}
	if c.Resources.QueryDir == "" {
		return errors.New("resources.query_dir cannot be empty")
	}

	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && *c.Server.Port < 0 {
		return errors.Newf("server.port must be positive, got %d", *c.Server.Port)
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}

// ServerPort resolves the configured port, applying the default when unset.
func (c *Config) ServerPort() int {
	if c.Server.Port == nil {
		return DefaultServerPort
	}
	return *c.Server.Port
}
