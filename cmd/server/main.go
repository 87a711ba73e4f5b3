package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "invoicing-api/internal/adapters/web"
	"invoicing-api/internal/ai"
	"invoicing-api/internal/app"
	"invoicing-api/internal/core"
	"invoicing-api/internal/db"
	"invoicing-api/internal/logger"
	"invoicing-api/internal/notify"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	auditService := core.NewAuditService(pool)
	clientService := core.NewClientService(pool, auditService)
	invoiceService := core.NewInvoiceService(pool, auditService)
	metricsService := core.NewMetricsService(pool)
	csvService := core.NewCSVService(pool, invoiceService, auditService)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; AI queries will be unavailable")
	}
	agent := ai.NewAgent(apiKey)
	sender := notify.NewMockSender(log.Logger)

	svc := app.NewAppService(clientService, invoiceService, metricsService, csvService, auditService, agent, sender)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
