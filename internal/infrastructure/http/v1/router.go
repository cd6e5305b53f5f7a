// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"facturo/internal/core/money"
	"facturo/internal/core/tenant"
	"facturo/internal/domain/billing"
	"facturo/internal/domain/catalogs/company"
	"facturo/internal/domain/catalogs/counterparty"
	"facturo/internal/domain/catalogs/currency"
	"facturo/internal/domain/catalogs/taxrate"
	"facturo/internal/domain/catalogs/warehouse"
	"facturo/internal/domain/documents"
	"facturo/internal/domain/taxes"
	"facturo/internal/infrastructure/http/v1/handlers"
	"facturo/internal/infrastructure/http/v1/middleware"
	"facturo/internal/infrastructure/storage/postgres"
	"facturo/internal/infrastructure/storage/postgres/catalog_repo"
	"facturo/internal/infrastructure/storage/postgres/document_repo"
	"facturo/pkg/logger"
	"facturo/pkg/numerator"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Rounder for document totals
	Rounder money.Rounder
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1 - TenantDB resolves the tenant pool before anything touches
	// the database
	api := router.Group("/api/v1")
	api.Use(middleware.TenantDB(cfg.TenantManager))
	{
		registerCatalogRoutes(api, cfg)
		registerDocumentRoutes(api, cfg)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()
	num := numerator.NewFromContext()

	// Note: Repos and services are created once but TxManager is obtained from context per-request

	// --- COMPANIES ---
	{
		repo := catalog_repo.NewCompanyRepo()
		service := company.NewService(repo, num)
		handler := handlers.NewCompanyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/companies"), handler)
	}

	// --- COUNTERPARTIES ---
	{
		repo := catalog_repo.NewCounterpartyRepo()
		service := counterparty.NewService(repo, num)
		handler := handlers.NewCounterpartyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/counterparties"), handler)
	}

	// --- CURRENCIES ---
	{
		repo := catalog_repo.NewCurrencyRepo()
		service := currency.NewService(repo, num)
		handler := handlers.NewCurrencyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/currencies"), handler)
	}

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo()
		service := warehouse.NewService(repo, num)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler)
	}

	// --- TAX RATES ---
	{
		repo := catalog_repo.NewTaxRateRepo()
		service := taxrate.NewService(repo, num)
		handler := handlers.NewTaxRateHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/tax-rates"), handler)
	}
}

// registerDocumentRoutes registers the unified document endpoints,
// including transformation and rectification.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	num := numerator.NewFromContext()

	docRepo := document_repo.NewDocumentRepo()
	statusRepo := document_repo.NewStatusRepo()
	aggregator := billing.NewAggregator(cfg.Rounder)
	auditService := postgres.MustNewAuditService()

	docService := documents.NewService(docRepo, statusRepo, aggregator, num)
	docService.SetAuditor(auditService)

	pipeline := billing.NewPipeline(docRepo, statusRepo, aggregator, num)
	pipeline.SetAuditor(auditService)

	rectifier := billing.NewRectifier(docRepo, statusRepo, aggregator, num)
	rectifier.SetAuditor(auditService)

	resolver := taxes.NewResolver(
		company.NewService(catalog_repo.NewCompanyRepo(), num),
		counterparty.NewService(catalog_repo.NewCounterpartyRepo(), num),
		taxrate.NewService(catalog_repo.NewTaxRateRepo(), num),
		taxes.MustDefault(),
	)

	docHandler := handlers.NewDocumentHandler(baseHandler, docService, resolver, auditService)
	transformHandler := handlers.NewTransformHandler(baseHandler, pipeline, rectifier)

	docs := rg.Group("/documents")
	{
		docs.GET("", docHandler.List)
		docs.POST("", docHandler.Create)
		docs.GET("/statuses", docHandler.ListStatuses)
		docs.POST("/transform", transformHandler.Transform)
		docs.GET("/:id", docHandler.Get)
		docs.PUT("/:id", docHandler.Update)
		docs.DELETE("/:id", docHandler.Delete)
		docs.POST("/:id/paid", docHandler.SetPaid)
		docs.GET("/:id/history", docHandler.History)
		docs.POST("/:id/verify-breakdown", docHandler.VerifyBreakdown)
		docs.POST("/:id/rectify", transformHandler.Rectify)
	}
}
