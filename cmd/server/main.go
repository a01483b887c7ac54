package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/config"
	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	logx.Info("🚀 Starting Mosaic chat server...")

	if err := run(); err != nil {
		logx.Fatalf("Server error: %s", errx.Reason(err))
	}
	logx.Info("✅ Server exited successfully")
}

// run owns every resource, so deferred cleanup happens before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	app := newApp(container)
	return startServer(app, cfg.Server.Port)
}

func newApp(container *Container) *fiber.App {
	cfg := container.Config

	app := fiber.New(fiber.Config{
		AppName:               "Mosaic",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.UploadMaxBytes + 1<<20, // multipart overhead
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: fiber.HeaderXRequestID,
		Generator: func() string {
			return "req-" + uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	container.ChatHandler.RegisterRoutes(api)
	logx.Info("✓ Chat routes registered")
	container.KnowledgeHandler.RegisterRoutes(api)
	logx.Info("✓ Knowledge routes registered")

	app.Use(notFoundHandler)

	printRouteSummary()
	return app
}

// healthCheckHandler reports liveness plus whether the assistant is
// configured. ?check_storage=true also looks for the resume file.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "mosaic",
			"version": container.Config.Server.AppVersion,
		}

		if err := container.Ready(); err != nil {
			health["assistant"] = "unconfigured"
			health["assistant_error"] = errx.Reason(err)
			health["status"] = "degraded"
		} else {
			health["assistant"] = "configured"
		}

		if c.QueryBool("check_storage", false) {
			exists, err := container.FileSystem.Exists(c.UserContext(), container.Config.Resume.File)
			if err != nil {
				health["storage"] = "unhealthy"
				health["storage_error"] = errx.Reason(err)
			} else {
				health["storage"] = "healthy"
				health["resume_available"] = exists
			}
		}

		return c.JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.HTTPErrorResponse{
		Error:     "Route not found",
		Code:      "NOT_FOUND",
		Type:      string(errx.TypeNotFound),
		RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
	})
}

// globalErrorHandler logs the failure and writes the JSON error body.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	}).WithError(err).Warn("Request error")

	return errx.Respond(c, err)
}

func printRouteSummary() {
	logx.Info("📋 Route Summary:")
	logx.Info("   ├─ Chat: POST /api/chat (SSE)")
	logx.Info("   ├─ Knowledge: POST /api/upload")
	logx.Info("   ├─ Metrics: /metrics")
	logx.Info("   └─ Health: /health")
}

// startServer listens until a shutdown signal arrives or the listener
// fails, then drains in-flight requests.
func startServer(app *fiber.App, port string) error {
	listenErr := make(chan error, 1)
	go func() {
		logx.Info(strings.Repeat("=", 61))
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(strings.Repeat("=", 61))

		listenErr <- app.Listen(":" + port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-listenErr:
		return err
	case sig := <-sigChan:
		logx.Infof("🛑 Received signal: %v", sig)
	}

	logx.Info("Shutting down gracefully...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	return nil
}
