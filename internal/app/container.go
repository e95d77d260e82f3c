package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blue-collar-portal/internal/config"
	"blue-collar-portal/internal/database"
	"blue-collar-portal/internal/database/migration"
	dbpostgres "blue-collar-portal/internal/database/postgres"
	"blue-collar-portal/internal/dispatch"
	"blue-collar-portal/internal/infrastructure/cache"
	"blue-collar-portal/internal/infrastructure/llm"
	"blue-collar-portal/internal/infrastructure/notify"
	riskclient "blue-collar-portal/internal/infrastructure/risk"
	"blue-collar-portal/internal/infrastructure/storage"
	"blue-collar-portal/internal/infrastructure/translation"
	"blue-collar-portal/internal/pkg/jwt"
	"blue-collar-portal/internal/repository"
	"blue-collar-portal/internal/repository/memory"
	"blue-collar-portal/internal/usecase/inbox"
	"blue-collar-portal/internal/usecase/moderation"
	"blue-collar-portal/internal/ws"
	"blue-collar-portal/migrations"

	"github.com/sirupsen/logrus"
)

// Container owns every long-lived dependency of a process.
type Container struct {
	Config config.Config
	Logger *logrus.Logger

	DB     database.DB
	Store  repository.Store
	Cache  *cache.Redis
	Pool   *dispatch.Pool
	Hub    *ws.Hub
	JWT    jwt.Service
	Engine *moderation.Engine
	Inbox  *inbox.Service

	stopHub context.CancelFunc
}

type Options struct {
	// Migrate applies pending migrations before the store is used.
	Migrate bool
}

func NewContainer(cfg config.Config, logger *logrus.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Container{Config: cfg, Logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.openStore(ctx, opts); err != nil {
		return nil, err
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger)
	c.Pool = dispatch.NewPool(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize, cfg.Dispatch.TaskTimeout, logger)
	c.Pool.Start()

	hubCtx, stopHub := context.WithCancel(context.Background())
	c.Hub = ws.NewHub(logger)
	go c.Hub.Run(hubCtx)
	c.stopHub = stopHub

	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)

	deps, err := c.engineDeps()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Engine = moderation.NewEngine(deps, moderation.PolicyFromConfig(cfg))
	c.Inbox = inbox.NewService(c.Store.Repos().Notifications)

	return c, nil
}

func (c *Container) openStore(ctx context.Context, opts Options) error {
	if c.Config.Storage.Driver == config.StorageDriverMemory {
		c.Logger.Warn("using in-memory store, data is lost on restart")
		c.Store = memory.NewStore()
		return nil
	}

	db, err := dbpostgres.Connect(ctx, c.Config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if opts.Migrate {
		n, err := migration.Runner{FS: migrations.FS, Logger: c.Logger}.Run(ctx, db.SQLDB())
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		c.Logger.WithField("applied", n).Info("migrations complete")
	}
	c.DB = db
	c.Store = repository.NewPostgresStore(db)
	return nil
}

func (c *Container) engineDeps() (moderation.Deps, error) {
	cfg := c.Config
	ai := llm.NewClient(cfg.OpenAI)

	d := moderation.Deps{
		Store:      c.Store,
		Notifier:   notify.NewGateway(c.Store.Repos().Notifications, c.Hub, c.Logger),
		Dispatcher: c.Pool,
		Locker:     c.Cache,
		Logger:     c.Logger,
	}

	switch cfg.Risk.Provider {
	case config.RiskProviderOpenAI:
		if ai == nil {
			return d, errors.New("RISK_PROVIDER=openai requires OPENAI_API_KEY")
		}
		d.Risk = riskclient.NewOpenAIAssessor(ai, llm.Model(cfg.OpenAI))
	default:
		if strings.TrimSpace(cfg.Risk.BaseURL) == "" {
			c.Logger.Warn("RISK_BASE_URL not set, every new listing goes to manual review")
		} else {
			d.Risk = riskclient.NewHTTPAssessor(cfg.Risk.BaseURL, cfg.Risk.Timeout, c.Logger)
		}
	}

	if ai != nil {
		d.Translator = translation.NewOpenAITranslator(ai, llm.Model(cfg.OpenAI))
	} else {
		c.Logger.Info("OPENAI_API_KEY not set, moderation reasons are not translated")
	}

	objects, err := c.objectStore()
	if err != nil {
		return d, err
	}
	d.Objects = objects
	return d, nil
}

func (c *Container) objectStore() (storage.ObjectStore, error) {
	cfg := c.Config.Storage
	if strings.TrimSpace(cfg.SupabaseURL) == "" {
		c.Logger.Warn("SUPABASE_URL not set, evidence is kept in memory")
		return storage.NewCachedStore(storage.NewMemoryStore(), c.Cache, c.Logger), nil
	}
	sb, err := storage.NewSupabaseStore(cfg, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return storage.NewCachedStore(sb, c.Cache, c.Logger), nil
}

// Close drains the dispatcher before releasing connections.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.Pool.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop dispatch: %w", err))
		}
		cancel()
	}
	if c.stopHub != nil {
		c.stopHub()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
