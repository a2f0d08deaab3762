// @title Alert Relay API
// @version 1.0
// @description Alert enrichment relay: LLM analysis forwarded to Grafana annotations and chat notifications.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/alert-relay/internal/client"
	"github.com/kube-rca/alert-relay/internal/config"
	"github.com/kube-rca/alert-relay/internal/handler"
	"github.com/kube-rca/alert-relay/internal/logger"
	"github.com/kube-rca/alert-relay/internal/service"
	"github.com/kube-rca/alert-relay/internal/template"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := newAnalyzer(ctx, cfg.Analysis)
	if err != nil {
		log.WithError(err).Fatal("Failed to create analyzer")
	}

	alertService := service.NewAlertService(
		analyzer,
		client.NewGrafanaClient(cfg.Grafana),
		newNotifier(cfg.Notify),
		template.NewRenderer(cfg.Template.Prompt, cfg.Template.Annotation, cfg.Template.Notification),
		log,
	)
	router := handler.NewRouter(handler.NewAlertHandler(alertService, cfg.Server.MaxBodyBytes, log), log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Server.Port,
			"provider": cfg.Analysis.Provider,
			"notify":   cfg.Notify.Kind,
		}).Info("Alert relay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

func newAnalyzer(ctx context.Context, cfg config.AnalysisConfig) (service.Analyzer, error) {
	if cfg.Provider == config.ProviderGemini {
		gemini, err := client.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	return client.NewOllamaClient(cfg), nil
}

func newNotifier(cfg config.NotifyConfig) service.Notifier {
	if cfg.Kind == config.NotifySlack {
		return client.NewSlackClient(cfg)
	}
	return client.NewTeamsClient(cfg)
}
