package main

import (
	"context"
	"log"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/mailing"
	"donortrack/internal/domain/transaction"
	"donortrack/internal/infrastructure/postgres"
	httphandlers "donortrack/internal/interfaces/http"
	"donortrack/internal/interfaces/scheduler"
	"donortrack/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	DonorHandler       *httphandlers.DonorHandler
	TransactionHandler *httphandlers.TransactionHandler
	SearchHandler      *httphandlers.SearchHandler
	MailingHandler     *httphandlers.MailingHandler

	// Services (for the scheduler job provider)
	TransactionService *transaction.Service

	cfg *config.Config
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Apply pending migrations
	if err := postgres.Migrate(db, cfg.Maintenance.MigrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	donorRepo := postgres.NewDonorRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	mailingRepo := postgres.NewMailingRepository(db)

	// Initialize domain services
	donorService := donor.NewService(donorRepo)
	transactionService := transaction.NewService(transactionRepo, donorRepo)
	mailingEngine := mailing.NewEngine(mailingRepo)

	// Initialize handlers
	donorHandler := httphandlers.NewDonorHandler(donorService, transactionService)
	transactionHandler := httphandlers.NewTransactionHandler(
		transactionService,
		cfg.Maintenance.RefreshCutoffDays,
		cfg.Maintenance.RefreshBatchSize,
	)
	searchHandler := httphandlers.NewSearchHandler(donorService, transactionService)
	mailingHandler := httphandlers.NewMailingHandler(mailingEngine)

	return &Dependencies{
		DB:                 db,
		DonorHandler:       donorHandler,
		TransactionHandler: transactionHandler,
		SearchHandler:      searchHandler,
		MailingHandler:     mailingHandler,
		TransactionService: transactionService,
		cfg:                cfg,
	}, nil
}

// RefreshJobProvider returns the scheduler's job source: one summary
// refresh job per run.
func (d *Dependencies) RefreshJobProvider() func(context.Context) ([]scheduler.Job, error) {
	return func(ctx context.Context) ([]scheduler.Job, error) {
		job := scheduler.NewRefreshJob(
			d.TransactionService,
			d.cfg.Maintenance.RefreshCutoffDays,
			d.cfg.Maintenance.RefreshBatchSize,
		)
		return []scheduler.Job{job}, nil
	}
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
