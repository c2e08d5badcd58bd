// Package api exposes the dispatcher over HTTP.
package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/validation"
	"gym-fulfillment/internal/models"
)

// Dispatcher is satisfied by *dispatch.Router.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.IntentRequest) models.WebhookResponse
}

// Pinger reports whether the document store can be reached.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

type Server struct {
	app        *fiber.App
	dispatcher Dispatcher
	store      Pinger
	validator  *validation.Validator
	cfg        *config.Config
	logger     logger.Logger
}

func NewServer(cfg *config.Config, dispatcher Dispatcher, store Pinger, log logger.Logger) *Server {
	log = log.WithFields(map[string]interface{}{"component": "api"})

	s := &Server{
		dispatcher: dispatcher,
		store:      store,
		validator:  validation.MustValidator(validation.WebhookRequestSchema),
		cfg:        cfg,
		logger:     log,
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout:          config.GetDuration(cfg.HTTP.WriteTimeout),
		ErrorHandler:          ErrorHandler(log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(RequestLogger(log))

	app.Get("/health", s.Health)
	app.Get("/ready", s.Ready)
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	app.All(WebhookPath, RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst), s.Webhook)

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
