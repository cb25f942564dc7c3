package http

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/config"
	"github.com/judychuepursuit/change-4-change-back/internal/http/handlers"
	"github.com/judychuepursuit/change-4-change-back/internal/http/middleware"
	"github.com/judychuepursuit/change-4-change-back/internal/mailer"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/charities"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/payments"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/receipts"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/users"
	"github.com/judychuepursuit/change-4-change-back/internal/storage"
)

// Deps are the process-wide clients. They are constructed once in main and
// injected here so tests can swap in stubs.
type Deps struct {
	Provider payments.Provider
	Mail     mailer.Service
	Archive  storage.Storage // optional receipt archive
}

func NewRouter(logger *slog.Logger, db *gorm.DB, cfg config.Config, deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Default())
	r.Use(middleware.ErrorHandler(logger))

	charityRepo := charities.NewRepo(db)
	txRepo := donations.NewRepo(db)
	userSvc := users.NewService(db)

	notifier := receipts.NewNotifier(
		receipts.HTMLRenderer{},
		deps.Mail,
		deps.Archive,
		cfg.Mail.FromAddr,
		cfg.Mail.FromName,
		logger,
	)
	intake := payments.NewService(charityRepo, txRepo, deps.Provider, notifier, logger)
	webhookSvc := payments.NewWebhookService(db, txRepo, logger)

	auth := handlers.NewAuthHandler(userSvc)
	tx := handlers.NewTransactionsHandler(txRepo)
	donate := handlers.NewDonationsHandler(intake)
	webhook := handlers.NewWebhookHandler(logger, deps.Provider, webhookSvc)

	r.GET("/", handlers.Root)
	r.GET("/users", auth.List)
	r.GET("/transactions", tx.List)
	r.POST("/login", auth.Login)
	r.POST("/register", auth.Register)
	r.POST("/create-payment-intent", donate.Create)
	r.POST("/stripe-webhook", webhook.Handle)

	r.NoRoute(handlers.NotFound)

	return r
}
