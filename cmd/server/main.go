package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"terravest/config"
	"terravest/internal/database"
	"terravest/internal/handler"
	"terravest/internal/repository"
	"terravest/internal/router"
	"terravest/internal/service"
	"terravest/pkg/cloudinary"
	"terravest/pkg/paystack"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[Startup] database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[Startup] migrate: %v", err)
	}
	database.SeedAdmin(db)

	uploads, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("[Startup] cloudinary: %v", err)
	}
	gateway := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.BankCacheTTL)

	// Repositories
	users := repository.NewUserRepository(db)
	deposits := repository.NewDepositRepository(db)
	withdrawals := repository.NewWithdrawalRepository(db)
	ledger := repository.NewLedgerRepository(db)
	transactions := repository.NewTransactionRepository(db)
	notifications := repository.NewNotificationRepository(db)
	news := repository.NewNewsRepository(db)
	events := repository.NewEventRepository(db)
	projects := repository.NewProjectRepository(db)
	gallery := repository.NewGalleryRepository(db)
	resources := repository.NewResourceRepository(db)
	partners := repository.NewPartnerRepository(db)
	contacts := repository.NewContactRepository(db)

	// Services
	mail := service.NewMailService(cfg.Mail)
	notifier := service.NewNotificationService(notifications)
	authSvc := service.NewAuthService(users, mail, cfg)
	depositSvc := service.NewDepositService(db, gateway, deposits, ledger, notifier, cfg)
	withdrawalSvc := service.NewWithdrawalService(db, gateway, withdrawals, ledger, notifier, cfg)
	bankSvc := service.NewBankService(users, gateway)

	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authSvc, users),
		Wallet: handler.NewWalletHandler(
			depositSvc, withdrawalSvc, bankSvc, authSvc,
			users, deposits, withdrawals, transactions, cfg,
		),
		Webhook:       handler.NewWebhookHandler(cfg.Paystack.SecretKey, depositSvc, withdrawalSvc),
		News:          handler.NewNewsHandler(news, uploads),
		Events:        handler.NewEventHandler(events, uploads),
		Projects:      handler.NewProjectHandler(projects, uploads),
		Media:         handler.NewMediaHandler(gallery, resources, partners, uploads),
		Search:        handler.NewSearchHandler(news, events, projects),
		Contact:       handler.NewContactHandler(contacts, mail),
		Notifications: handler.NewNotificationHandler(notifications),
		Admin:         handler.NewAdminHandler(users, news, events, projects, gallery, resources, partners),
	}

	// Withdrawal retry sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Wallet.RetrySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		result, err := withdrawalSvc.RetryPending(ctx)
		if err != nil {
			log.Printf("[Sweep] pass failed: %v", err)
			return
		}
		if result.Checked > 0 {
			log.Printf("[Sweep] checked=%d completed=%d reversed=%d in_flight=%d",
				result.Checked, result.Completed, result.Reversed, result.InFlight)
		}
	}); err != nil {
		log.Fatalf("[Startup] cron schedule %q: %v", cfg.Wallet.RetrySchedule, err)
	}
	scheduler.Start()

	engine := router.Setup(cfg, handlers)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[Startup] listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Startup] serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Shutdown] draining")

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Shutdown] forced: %v", err)
	}
	log.Println("[Shutdown] done")
}
