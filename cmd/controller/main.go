package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MahiRanka/dimos-unitree/pkg/api"
	"github.com/MahiRanka/dimos-unitree/pkg/config"
	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/recorder"
	"github.com/MahiRanka/dimos-unitree/pkg/zeromq"
	"github.com/MahiRanka/dimos-unitree/services"
)

func main() {
	configDir := flag.String("config", "./config", "directory containing controller_config.yaml")
	flag.Parse()

	// Load bootstrap configuration before anything else; without it we
	// have no log level, ports or control rate.
	cfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load bootstrap config: %v", err)
	}

	appLogger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger.Infof("Teleop controller starting (control rate %.1f Hz)", cfg.Control.RateHz)

	// Key state shared between the websocket handler and the control loop.
	keyState := api.NewKeyStatePoller()

	teleopService, err := services.NewTeleopService(cfg.Control, keyState, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create teleop service: %v", err)
	}

	// Outbound command channel to the robot bridge.
	publisher, err := zeromq.NewCommandPublisher(cfg.ZeroMQ, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create command publisher: %v", err)
	}
	teleopService.AddSink(publisher)

	// Optional per-tick command recording.
	var rec *recorder.Recorder
	if cfg.Data.CommandLogFile != "" {
		if err := os.MkdirAll(cfg.Data.Directory, 0755); err != nil {
			appLogger.Fatalf("Failed to create data directory '%s': %v", cfg.Data.Directory, err)
		}
		logPath := filepath.Join(cfg.Data.Directory, cfg.Data.CommandLogFile)
		rec, err = recorder.NewRecorder(logPath, appLogger)
		if err != nil {
			appLogger.Fatalf("Failed to create command recorder: %v", err)
		}
		teleopService.AddSink(rec)
	} else {
		appLogger.Infof("Command recording disabled (data.command_log_file not set)")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Quadruped Teleop Controller",
		ErrorHandler: customErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "quadruped teleop controller",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	apiGroup := app.Group("/api")
	teleopAPI := api.NewTeleopAPI(teleopService, rec, appLogger)
	teleopAPI.RegisterRoutes(apiGroup)

	// Websocket upgrade gate, then the operator key-event stream.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		api.ControlWebSocketHandler(conn, keyState, appLogger)
	}))

	teleopService.Start()

	go func() {
		appLogger.Infof("Server starting on port %d", cfg.Server.HTTPPort)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.HTTPPort)); err != nil {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infof("Shutting down...")

	// Stop the loop first so the final zero command reaches the robot
	// before the publisher closes.
	teleopService.Stop()
	publisher.Close()
	if rec != nil {
		rec.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Infof("Server exited properly")
}

// customErrorHandler renders any unhandled error as JSON.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
