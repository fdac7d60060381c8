package router

import (
	"time"

	"invoicehub/internal/config"
	"invoicehub/internal/handler"
	"invoicehub/internal/infra"
	"invoicehub/internal/middleware"
	"invoicehub/internal/repository"
	"invoicehub/internal/service"
	"invoicehub/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	companySvc := service.NewCompanyService(companyRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	productSvc := service.NewProductService(productRepo)
	documentSvc := service.NewDocumentService(documentRepo, companyRepo, customerRepo, productRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	companiesH := handler.NewCompaniesHandler(companySvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	productsH := handler.NewProductsHandler(productSvc)
	documentsH := handler.NewDocumentsHandler(documentSvc, documentRepo, companyRepo, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: member, manager, admin — declared per-endpoint

		// Documents — every authenticated user can read and create
		docs := v1.Group("/documents", middleware.RequireRole("member", "manager", "admin"))
		{
			docs.POST("", documentsH.Create)
			docs.GET("", documentsH.List)
			docs.GET("/:id", documentsH.Get)
			docs.PUT("/:id", documentsH.Update)
			docs.POST("/:id/transition", documentsH.Transition)
			docs.GET("/:id/pdf", documentsH.DownloadPDF)
		}
		// Amendments rewrite frozen financials — manager and above
		v1.POST("/documents/:id/amend", middleware.RequireRole("manager", "admin"), documentsH.Amend)

		// Customers — reads for everyone, writes for manager and above
		v1.GET("/customers", middleware.RequireRole("member", "manager", "admin"), customersH.List)
		v1.GET("/customers/:id", middleware.RequireRole("member", "manager", "admin"), customersH.Get)
		customers := v1.Group("/customers", middleware.RequireRole("manager", "admin"))
		{
			customers.POST("", customersH.Create)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Deactivate)
		}

		// Products — same split as customers
		v1.GET("/products", middleware.RequireRole("member", "manager", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("member", "manager", "admin"), productsH.Get)
		products := v1.Group("/products", middleware.RequireRole("manager", "admin"))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		// Company settings — admin only for writes
		v1.GET("/company", middleware.RequireRole("member", "manager", "admin"), companiesH.Get)
		v1.PUT("/company", middleware.RequireRole("admin"), companiesH.Update)

		// User management — admin only
		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.POST("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
