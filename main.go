package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/Sid-047/reminderApp/config"
	"github.com/Sid-047/reminderApp/modules/api"
	"github.com/Sid-047/reminderApp/modules/auth"
	"github.com/Sid-047/reminderApp/modules/notification"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"github.com/Sid-047/reminderApp/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Reminder Task Service ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("HTTP address: %s", cfg.HTTP.Addr)
	log.Printf("Storage backend: %s", cfg.Storage.Backend)

	logLevel := mono.WithLogLevel(mono.LogLevelInfo)
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = mono.WithLogLevel(mono.LogLevelDebug)
	case "warn", "warning":
		logLevel = mono.WithLogLevel(mono.LogLevelWarn)
	case "error":
		logLevel = mono.WithLogLevel(mono.LogLevelError)
	}
	logFormat := mono.WithLogFormat(mono.LogFormatText)
	if strings.EqualFold(cfg.LogFormat, "json") {
		logFormat = mono.WithLogFormat(mono.LogFormatJSON)
	}

	// Create mono application with embedded NATS
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		logLevel,
		logFormat,
		mono.WithNATSPort(cfg.NATS.Port),
		mono.WithJetStreamStorageDir(cfg.NATS.JetStreamDir),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// The task module receives the snapshot plugin through SetPlugin("snapshot", ...)
	if err := app.RegisterPlugin(snapshot.NewPluginModule(cfg.Snapshot()), "snapshot"); err != nil {
		log.Fatalf("Failed to register snapshot plugin: %v", err)
	}

	seed := task.NoSeed
	if cfg.SeedDemo {
		seed = task.SampleTasks
	}

	// Order: independent modules first, then dependent modules
	app.Register(notification.NewModule())
	app.Register(auth.NewModule(nil, cfg.Token()))
	app.Register(task.NewModule(task.WithSeeder(seed)))
	app.Register(api.NewModule(cfg.HTTP.Addr)) // Depends on auth, task and notification

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", cfg.HTTP.Addr)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  GET    /health                        - Health check")
	log.Println("  POST   /api/v1/auth/register          - Create an account")
	log.Println("  POST   /api/v1/auth/login             - Login and get a token")
	log.Println("  POST   /api/v1/auth/forgot-password   - Request a password reset")
	log.Println("  POST   /api/v1/auth/reset-password    - Reset a password")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  POST   /api/v1/auth/logout            - Logout")
	log.Println("  GET    /api/v1/tasks                  - List tasks (priority, status, date, sort, order)")
	log.Println("  POST   /api/v1/tasks                  - Add a task")
	log.Println("  GET    /api/v1/tasks/:id              - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id              - Update a task")
	log.Println("  POST   /api/v1/tasks/:id/complete     - Complete a task")
	log.Println("  DELETE /api/v1/tasks/:id              - Delete a task")
	log.Println("  GET    /api/v1/dashboard              - Dashboard buckets and stats")
	log.Println("  GET    /api/v1/calendar?date=         - Tasks on a day")
	log.Println("  GET    /api/v1/calendar/month?month=  - Month markers and stats")
	log.Println("  GET    /api/v1/summary                - Completion summary")
	log.Println("  GET    /api/v1/status                 - Load state and recent activity")
	log.Println("")
	log.Println("CLI: go run ./cmd/taskctl --help")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
