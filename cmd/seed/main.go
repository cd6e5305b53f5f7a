// Package main provides a CLI tool for seeding a tenant database with
// the status configuration and demo catalog data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"facturo/internal/core/tenant"
	"facturo/internal/domain/catalogs/company"
	"facturo/internal/domain/catalogs/counterparty"
	"facturo/internal/domain/catalogs/currency"
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/domain/catalogs/warehouse"
	"facturo/internal/domain/documents"
	"facturo/internal/infrastructure/storage/postgres"
	"facturo/internal/infrastructure/storage/postgres/catalog_repo"
	"facturo/internal/infrastructure/storage/postgres/document_repo"
	"facturo/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Repos read the TxManager from context, same as in a request.
	txm := postgres.NewTxManagerFromRawPool(pool.Unwrap())
	ctx = tenant.WithPool(ctx, pool.Unwrap())
	ctx = tenant.WithTxManager(ctx, txm)

	if err := seedStatuses(ctx, log); err != nil {
		log.Fatalw("failed to seed statuses", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedStatuses writes the lifecycle status configuration for all four
// document types. The generates_type links drive source advancement in
// the transformation pipeline.
func seedStatuses(ctx context.Context, log *logger.Logger) error {
	repo := document_repo.NewStatusRepo()

	type statusSeed struct {
		code      string
		name      string
		docType   documents.DocType
		editable  bool
		isDefault bool
		generates documents.DocType
		sortOrder int
	}

	seeds := []statusSeed{
		{"draft", "Draft", documents.TypeEstimate, true, true, "", 10},
		{"ordered", "Ordered", documents.TypeEstimate, false, false, documents.TypeOrder, 20},
		{"delivered", "Delivered", documents.TypeEstimate, false, false, documents.TypeDeliveryNote, 30},
		{"invoiced", "Invoiced", documents.TypeEstimate, false, false, documents.TypeInvoice, 40},
		{"rejected", "Rejected", documents.TypeEstimate, false, false, "", 50},

		{"open", "Open", documents.TypeOrder, true, true, "", 10},
		{"delivered", "Delivered", documents.TypeOrder, false, false, documents.TypeDeliveryNote, 20},
		{"invoiced", "Invoiced", documents.TypeOrder, false, false, documents.TypeInvoice, 30},
		{"cancelled", "Cancelled", documents.TypeOrder, false, false, "", 40},

		{"open", "Open", documents.TypeDeliveryNote, true, true, "", 10},
		{"invoiced", "Invoiced", documents.TypeDeliveryNote, false, false, documents.TypeInvoice, 20},

		{"issued", "Issued", documents.TypeInvoice, false, true, "", 10},
	}

	for _, s := range seeds {
		status := documents.NewStatus(s.code, s.name, s.docType, s.editable)
		status.IsDefault = s.isDefault
		status.SortOrder = s.sortOrder
		if s.generates != "" {
			g := s.generates
			status.GeneratesType = &g
		}

		if err := repo.Create(ctx, status); err != nil {
			return fmt.Errorf("create status %s/%s: %w", s.docType, s.code, err)
		}
		log.Infow("status seeded", "doc_type", s.docType, "code", s.code)
	}

	return nil
}

// seedDemoData writes a minimal working catalog set: the Spanish VAT
// rates, a base currency, one company, a warehouse and two
// counterparties.
func seedDemoData(ctx context.Context, log *logger.Logger) error {
	currencyRepo := catalog_repo.NewCurrencyRepo()
	companyRepo := catalog_repo.NewCompanyRepo()
	warehouseRepo := catalog_repo.NewWarehouseRepo()
	counterpartyRepo := catalog_repo.NewCounterpartyRepo()
	taxRepo := catalog_repo.NewTaxRateRepo()

	iso := "EUR"
	symbol := "€"
	eur := currency.NewCurrency("EUR", "Euro", &iso, &symbol)
	eur.IsBase = true
	if err := currencyRepo.Create(ctx, eur); err != nil {
		return fmt.Errorf("create currency: %w", err)
	}

	rates := []struct {
		code      string
		name      string
		percent   string
		surcharge string
		isDefault bool
		exempt    bool
	}{
		{"IVA21", "IVA General 21%", "21", "5.2", true, false},
		{"IVA10", "IVA Reducido 10%", "10", "1.4", false, false},
		{"IVA4", "IVA Superreducido 4%", "4", "0.5", false, false},
		{"EXENTO", "Exento", "0", "0", false, true},
	}
	for _, r := range rates {
		rate := taxrate.NewTaxRate(r.code, r.name, decimal.RequireFromString(r.percent))
		rate.SurchargePercent = decimal.RequireFromString(r.surcharge)
		rate.IsDefault = r.isDefault
		rate.Exempt = r.exempt
		if err := taxRepo.Create(ctx, rate); err != nil {
			return fmt.Errorf("create tax rate %s: %w", r.code, err)
		}
	}

	co := company.NewCompany("MAIN", "Demo Company S.L.")
	co.CurrencyID = eur.ID
	co.SurchargeEnabled = true
	if err := companyRepo.Create(ctx, co); err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	wh := warehouse.NewWarehouse("MAIN", "Main Warehouse")
	wh.IsDefault = true
	if err := warehouseRepo.Create(ctx, wh); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}

	customer := counterparty.NewCounterparty("C0001", "Demo Customer", counterparty.TypeCustomer)
	customer.VATRegistered = true
	if err := counterpartyRepo.Create(ctx, customer); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	supplier := counterparty.NewCounterparty("S0001", "Demo Supplier", counterparty.TypeSupplier)
	if err := counterpartyRepo.Create(ctx, supplier); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	log.Info("demo data seeded")
	return nil
}
