package main

import (
	"log"
	"net/http"

	httphandlers "donortrack/internal/interfaces/http"
	"donortrack/internal/shared/config"
	"donortrack/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Donors
	mux.HandleFunc("/api/donors", deps.DonorHandler.HandleDonors)
	mux.HandleFunc("/api/donors/batch", deps.DonorHandler.HandleBatchCreate)
	mux.HandleFunc("/api/donors/next-id", deps.DonorHandler.HandleNextID)
	mux.HandleFunc("/api/donors/", deps.DonorHandler.HandleDonorByID)

	// Transactions
	mux.HandleFunc("/api/transactions", deps.TransactionHandler.HandleTransactions)
	mux.HandleFunc("/api/transactions/batch", deps.TransactionHandler.HandleBatch)
	mux.HandleFunc("/api/transactions/refresh-summaries", deps.TransactionHandler.HandleRefreshSummaries)
	mux.HandleFunc("/api/transactions/", deps.TransactionHandler.HandleTransactionByID)

	// Search and exports
	mux.HandleFunc("/api/search/donors", deps.SearchHandler.HandleDonorSearch)
	mux.HandleFunc("/api/search/donors/refine", deps.SearchHandler.HandleDonorRefine)
	mux.HandleFunc("/api/search/donors/export", deps.SearchHandler.HandleDonorExport)
	mux.HandleFunc("/api/search/transactions", deps.SearchHandler.HandleTransactionSearch)
	mux.HandleFunc("/api/search/transactions/export", deps.SearchHandler.HandleTransactionExport)

	// Mailing list
	mux.HandleFunc("/api/mailing/generate", deps.MailingHandler.HandleGenerate)
	mux.HandleFunc("/api/mailing/generate/export", deps.MailingHandler.HandleGenerateExport)
	mux.HandleFunc("/api/mailing/active/export", deps.MailingHandler.HandleActiveExport)

	// Apply global middleware
	handler := middleware.Logging(middleware.Telemetry(middleware.CORS(cfg.Server.AllowedHosts)(mux)))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("HSTS middleware enabled")
	}

	return handler
}
