package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/config"
	apphttp "github.com/judychuepursuit/change-4-change-back/internal/http"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/email"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/payments"
	"github.com/judychuepursuit/change-4-change-back/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	mail, err := email.FromConfig(cfg.Mail)
	if err != nil {
		log.Fatal(err)
	}

	archive, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to init receipt storage: %v", err)
	}
	logger.Info("receipt storage ready", "driver", archive.Driver)

	deps := apphttp.Deps{
		Provider: payments.NewStripeProvider(cfg.Stripe, logger),
		Mail:     mail,
		Archive:  archive.Storage,
	}

	r := apphttp.NewRouter(logger, db, cfg, deps)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
