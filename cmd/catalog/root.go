package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/movie-catalog-client/internal/config"
	"github.com/Sternrassler/movie-catalog-client/pkg/catalog"
	"github.com/Sternrassler/movie-catalog-client/pkg/client"
	"github.com/Sternrassler/movie-catalog-client/pkg/logging"
	"github.com/Sternrassler/movie-catalog-client/pkg/metrics"
	"github.com/Sternrassler/movie-catalog-client/pkg/token"
)

// app holds what the root command initializes for its subcommands.
type app struct {
	cfgFile     string
	baseURL     string
	logLevel    string
	dumpMetrics bool

	cfg     *config.Config
	logger  zerolog.Logger
	catalog *catalog.Catalog
	guard   *token.Guard
	redis   *redis.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse a movie catalog API",
		Long: `catalog queries a movie catalog API: filtered and sorted movie listings,
movie details, person filmographies, search and reference lists.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.initialize,
		PersistentPostRunE: a.finalize,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.StringVar(&a.baseURL, "base-url", "", "catalog API base URL (overrides api.base_url)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	flags.BoolVar(&a.dumpMetrics, "dump-metrics", false, "print collected metrics to stderr on exit")

	rootCmd.AddCommand(
		newMoviesCmd(a),
		newMovieCmd(a),
		newPersonCmd(a),
		newSearchCmd(a),
		newGenresCmd(a),
		newCountriesCmd(a),
		newPersonsCmd(a),
	)

	return rootCmd
}

// initialize loads the configuration and builds the catalog.
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.API.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logging.Setup(cfg.LoggerConfig())
	a.logger = logging.NewLogger("cli")

	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	a.catalog, err = catalog.New(c, cfg.PaginationConfig())
	if err != nil {
		return err
	}

	a.guard, err = a.newGuard(cmd.Context())
	if err != nil {
		return err
	}

	a.logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Int("aggregation_page_size", cfg.Aggregation.PageSize).
		Int("aggregation_max_pages", cfg.Aggregation.MaxPages).
		Bool("shared_tokens", a.redis != nil).
		Msg("Catalog client ready")

	return nil
}

// newGuard uses a Redis-backed sequencer when one is configured, so a newer
// invocation sharing the key makes an older one's response stale.
func (a *app) newGuard(ctx context.Context) (*token.Guard, error) {
	if a.cfg.Tokens.RedisAddr == "" {
		return token.NewGuard(nil), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr: a.cfg.Tokens.RedisAddr,
	})
	if err := a.redis.Ping(ctx).Err(); err != nil {
		a.redis.Close()
		a.redis = nil
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", a.cfg.Tokens.RedisAddr, err)
	}

	return token.NewGuard(token.NewRedis(a.redis, a.cfg.Tokens.RedisKey)), nil
}

func (a *app) finalize(cmd *cobra.Command, args []string) error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}

	if a.dumpMetrics {
		return metrics.WriteText(os.Stderr, metrics.Gatherer, metrics.Prefix)
	}
	return nil
}
