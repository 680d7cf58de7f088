package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/httputil"
	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "timegrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.File
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration file once per process.
func (c *CLI) config() (*config.File, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Session - per-command runner, cache and feed client
// =============================================================================

// session bundles what a command needs to load events and export them.
type session struct {
	cfg    *config.File
	loc    *time.Location
	cache  cache.Cache
	client *httputil.Client
	runner *pipeline.Runner
	logger *log.Logger
}

// openSession builds the cache, feed client and runner from the config.
// Cache problems degrade to no caching rather than failing the command.
func (c *CLI) openSession(ctx context.Context, noCache bool) (*session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.Cache.ArtifactTTL()
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(ctx)
	store := c.newCache(ctx, cfg.Cache, noCache)
	runner := pipeline.NewRunner(store, nil, logger)
	runner.TTL = ttl
	return &session{
		cfg:    cfg,
		loc:    loc,
		cache:  store,
		client: httputil.NewClient(store, nil),
		runner: runner,
		logger: logger,
	}, nil
}

func (c *CLI) newCache(ctx context.Context, cc config.CacheConfig, noCache bool) cache.Cache {
	if noCache || cc.Backend == config.BackendNone {
		return cache.NewNullCache()
	}
	switch cc.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cc.RedisAddr, DB: cc.RedisDB})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cc.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		fc, err := cache.NewFileCache(config.ExpandHome(cc.Dir))
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// Close releases the cache connection.
func (s *session) Close() error {
	return s.runner.Close()
}

// sources opens the --events source when given, otherwise every source
// of the config file.
func (s *session) sources(ctx context.Context, events string, refresh bool) ([]source.Named, error) {
	var specs []source.Spec
	switch {
	case events == "-":
		specs = []source.Spec{{Name: "stdin", Kind: source.KindJSON, Path: "-"}}
	case events != "" && errors.IsURL(events):
		specs = []source.Spec{{URL: events}}
	case events != "":
		specs = []source.Spec{{Path: config.ExpandHome(events)}}
	default:
		specs = s.cfg.SourceSpecs()
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no event sources: pass --events or add [[sources]] to %s", configHint(s.cfg))
	}

	env := source.Env{
		Location: s.loc,
		Client:   s.client,
		Refresh:  refresh,
		Logger:   s.logger,
		Stdin:    stdin,
	}
	opened := make([]source.Named, 0, len(specs))
	for _, spec := range specs {
		named, err := source.Open(ctx, spec, env)
		if err != nil {
			_ = source.Close(opened)
			return nil, err
		}
		opened = append(opened, named)
	}
	return opened, nil
}

func configHint(cfg *config.File) string {
	if cfg.Path() != "" {
		return cfg.Path()
	}
	return config.DefaultPath()
}
