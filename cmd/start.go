package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloze-manager/core/checkpoint"
	"cloze-manager/core/collection"
	"cloze-manager/core/config"
	"cloze-manager/core/database"
	"cloze-manager/core/loader"
	"cloze-manager/core/logger"
	"cloze-manager/core/middleware/auth"
	"cloze-manager/core/middleware/rayid"
	"cloze-manager/core/storage"
	"cloze-manager/feature/cloze"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the editor bridge server",
	Long:  `Starts the HTTP bridge the editor webview talks to and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the Collection Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open collection database", zap.Error(err))
		}
		if err := collection.AutoMigrate(db); err != nil {
			logg.Fatal("Failed to migrate collection schema", zap.Error(err))
		}
		store := collection.NewStore(db, logg)
		logg.Info("Collection opened",
			zap.String("driver", cfg.Database.Driver),
			zap.String("name", cfg.Database.Name),
		)

		// 4. Checkpoint Storage (Optional)
		var checkpoints *checkpoint.Manager
		if cfg.Storage.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			checkpoints = checkpoint.NewManager(client, cfg.Storage.Bucket, logg)
			if err := checkpoints.EnsureBucket(cmd.Context()); err != nil {
				logg.Warn("Checkpoint bucket unavailable, batch undo disabled", zap.Error(err))
				checkpoints = nil
			}
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 6. Register Features
		mgr := loader.NewManager()
		mgr.Register(cloze.NewFeature(store, checkpoints, logg))

		// Middleware: RayID first so everything downstream can trace.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting bridge", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Bridge failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down bridge...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
