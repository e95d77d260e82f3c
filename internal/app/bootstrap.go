package app

import (
	"fmt"
	"strings"

	"blue-collar-portal/internal/config"
	"blue-collar-portal/internal/delivery/http/handler"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/delivery/http/routes"
	v1 "blue-collar-portal/internal/delivery/http/routes/v1"
	"blue-collar-portal/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

const bodyLimit = 64 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: bodyLimit,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config, logger *logrus.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger, Options{Migrate: cfg.IsDevelopment()})
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *logrus.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(logger)
	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	checks := map[string]handler.Pinger{"redis": c.Cache}
	if c.DB != nil {
		checks["database"] = c.DB
	}

	handlers := v1.Handlers{
		Listings:      handler.NewListingHandler(c.Engine),
		Reports:       handler.NewReportHandler(c.Engine),
		Appeals:       handler.NewAppealHandler(c.Engine),
		Companies:     handler.NewCompanyHandler(c.Engine),
		Audit:         handler.NewAuditHandler(c.Engine),
		Notifications: handler.NewNotificationHandler(c.Inbox),
		WS:            ws.NewHandler(c.Hub, c.Logger, middleware.CtxUserIDKey),
	}

	routes.NewRegistry(
		handler.NewHealthHandler(checks),
		handlers,
		middleware.NewAuthMiddleware(c.JWT),
	).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
