package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"google.golang.org/genai"

	httpadapter "resume-render/internal/adapter/http"
	repo "resume-render/internal/adapter/repository"
	"resume-render/internal/auth"
	"resume-render/internal/config"
	"resume-render/internal/infrastructure/migration"
	"resume-render/internal/logger"
	"resume-render/internal/render"
	"resume-render/internal/usecase"
	"resume-render/pkg/ai"
	infra "resume-render/pkg/infrastructure"
)

const (
	sweepInterval = time.Minute
	editorIdle    = 30 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	store, err := repo.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to open device store", "path", cfg.Store.Path, "error", err)
	}
	defer store.Close()

	// remote entitlements are optional; without them grants stay on the device
	var remote usecase.EntitlementStore
	if cfg.Database.DSN != "" {
		pool, err := infra.NewEntitlementsPool(ctx, cfg.Database.DSN)
		if err != nil {
			log.Warn("entitlements DB not available, using device entitlements only", "error", err)
		} else {
			defer pool.Close()
			if err := migration.RunMigrations(ctx, pool); err != nil {
				log.Fatal("failed to run migrations", "error", err)
			}
			remote = repo.NewEntitlementsRepo(pool)
		}
	}

	summarizer, err := newSummarizer(ctx, cfg)
	if err != nil {
		log.Warn("ai summary disabled", "error", err)
	}

	var archive usecase.Archive
	if cfg.Storage.Endpoint != "" {
		a, err := infra.NewMinioArchive(ctx, infra.MinioOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Warn("export archive not available", "error", err)
		} else {
			archive = a
		}
	}

	ents := usecase.NewEntitlementService(store, remote, cfg.Entitlement.RetryBase, render.Find, log)
	editors := usecase.NewEditorRegistry(usecase.EditorDeps{
		Store:      store,
		Summarizer: summarizer,
		Log:        log,
		Debounce:   cfg.Editor.Debounce,
	})
	checkout := usecase.NewCheckout(usecase.CheckoutConfig{
		KeyID:     cfg.Checkout.KeyID,
		KeySecret: cfg.Checkout.KeySecret,
		Currency:  cfg.Checkout.Currency,
	}, ents, render.Find, log)
	exports := usecase.NewExportService(infra.NewChromeExporter(cfg.Export.Path), archive, log)

	sweepDone := make(chan struct{})
	go func() {
		editors.Run(ctx, sweepInterval, editorIdle)
		close(sweepDone)
	}()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(httpadapter.SessionMiddleware(auth.NewVerifier(cfg.Auth.JWTSecret), log))
	httpadapter.NewHandler(editors, ents, checkout, exports, log).Register(app)

	go func() {
		log.Info("listening", "port", cfg.HTTP.Port)
		if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("server shutdown", "error", err)
	}
	// Run flushes every open draft once ctx is done
	<-sweepDone
}

func newSummarizer(ctx context.Context, cfg *config.Config) (ai.Summarizer, error) {
	switch cfg.AI.Provider {
	case "gemini":
		g, err := ai.NewGemini(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey}, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "service":
		return ai.NewClient(cfg.AI.ServiceURL), nil
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
}
