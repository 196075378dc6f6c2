package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tucfis/shexpose/am"
	"github.com/tucfis/shexpose/crud"
	"github.com/tucfis/shexpose/entity"
	"github.com/tucfis/shexpose/errors"
	"github.com/tucfis/shexpose/fragment"
	"github.com/tucfis/shexpose/logger"
	"github.com/tucfis/shexpose/metric"
	"github.com/tucfis/shexpose/server"
	"github.com/tucfis/shexpose/shapes"
	"github.com/tucfis/shexpose/sparql"
)

var servePort int

// ServeCmd starts the HTTP server
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shexpose HTTP server",
	Long: `Load the shape schema, fragment map, and entity declarations, validate
them against each other, and start serving the configured entities.

Startup fails fast on configuration errors: every declared attribute must
resolve against the schema and have a covering fragment query.`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (overrides configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if cfg.Log.JSON != logger.JSONOutput {
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return errors.Wrap(err, "initializing logger")
		}
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = cfg.Log.Verbosity
	}
	logger.SetVerbosity(verbosity)
	log := logger.Named("serve")

	metrics := metric.New()
	translator, store, err := buildTranslator(cfg, metrics)
	if err != nil {
		return err
	}

	port := cfg.ServerPort()
	if servePort != 0 {
		port = servePort
	}

	printStartupBanner(verbosity, port, cfg.Store.QueryEndpoint)

	srv := server.New(translator, store, metrics, cfg.Server.AllowedOrigins)

	// Watch the project config for live verbosity changes
	if configPath := am.GetViper().ConfigFileUsed(); configPath != "" {
		if watcher, err := am.NewConfigWatcher(configPath); err == nil {
			watcher.OnReload(func(newCfg *am.Config) error {
				logger.SetVerbosity(newCfg.Log.Verbosity)
				return nil
			})
			watcher.Start()
			defer watcher.Stop()
		} else {
			log.Warnw("Config watcher unavailable", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Infow("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildTranslator loads every resource description file and assembles the
// validated translator plus the store client it talks through.
func buildTranslator(cfg *am.Config, metrics *metric.Metrics) (*crud.Translator, *sparql.Client, error) {
	schema, err := shapes.Load(cfg.Resources.SchemaPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading schema %s", cfg.Resources.SchemaPath)
	}

	locator, err := fragment.LoadLocator(cfg.Resources.FragmentMapPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading fragment map %s", cfg.Resources.FragmentMapPath)
	}

	queries, err := fragment.LoadRegistry(cfg.Resources.QueryDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading query templates from %s", cfg.Resources.QueryDir)
	}

	entities, err := entity.LoadRegistry(cfg.Resources.EntitiesPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading entities %s", cfg.Resources.EntitiesPath)
	}

	store, err := sparql.NewClient(sparql.Config{
		QueryEndpoint:  cfg.Store.QueryEndpoint,
		UpdateEndpoint: cfg.Store.UpdateEndpoint,
		Username:       cfg.Store.Username,
		Password:       cfg.Store.Password,
		BearerToken:    cfg.Store.BearerToken,
		TimeoutSeconds: cfg.Store.TimeoutSeconds,
	}, logger.Named("sparql"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating store client")
	}

	translator, err := crud.NewTranslator(schema, locator, queries, entities, store, metrics)
	if err != nil {
		return nil, nil, err
	}

	return translator, store, nil
}
