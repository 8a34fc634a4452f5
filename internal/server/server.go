// Package server assembles the ledger services behind the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ustbills/internal/database"
	_ "ustbills/internal/docs" // swagger document
	"ustbills/internal/handlers"
	"ustbills/internal/middleware"
	"ustbills/internal/ratecache"
	"ustbills/internal/services"
)

// Services is the full set of ledger services the API exposes.
type Services struct {
	Users    services.UserServicer
	USTBills services.USTBillServicer
	Holdings services.HoldingServicer
	Config   services.PlatformConfigServicer
	Metrics  services.MetricsServicer
	Rates    services.RateServicer
	Broker   services.BrokerServicer
	Admin    services.AdminServicer
	Audit    services.AuditServicer
}

// NewServices builds every service over a single ledger store. cache may be nil.
func NewServices(store *database.Store, fetcher services.RateFetcher, cache ratecache.Cache, adminIdentities []string) Services {
	return Services{
		Users:    services.NewUserService(store),
		USTBills: services.NewUSTBillService(store),
		Holdings: services.NewHoldingService(store),
		Config:   services.NewPlatformConfigService(store),
		Metrics:  services.NewMetricsService(store),
		Rates:    services.NewRateService(store, fetcher, cache),
		Broker:   services.NewBrokerService(store),
		Admin:    services.NewAdminService(store, adminIdentities),
		Audit:    services.NewAuditService(store),
	}
}

// Options controls authentication and optional routes.
type Options struct {
	JWTSecret      string
	PipelineAPIKey string
	EnableSwagger  bool
}

// NewRouter registers every route on a fresh Gin engine.
func NewRouter(svc Services, opts Options) *gin.Engine {
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	ustbillHandler := handlers.NewUSTBillHandler(svc.USTBills, svc.Audit)
	holdingHandler := handlers.NewHoldingHandler(svc.Holdings, svc.Audit)
	platformHandler := handlers.NewPlatformHandler(svc.Config, svc.Metrics, svc.Rates, svc.Audit)
	brokerHandler := handlers.NewBrokerHandler(svc.Broker, svc.Audit)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	if opts.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Machine-to-machine routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/broker-purchases", brokerHandler.AddPurchase)
	pipeline.POST("/treasury-rates/fetch", platformHandler.FetchTreasuryRates)
	pipeline.POST("/ustbills/sweep", ustbillHandler.RunSweep)

	// Authenticated routes
	protected := v1.Group("/")
	protected.Use(middleware.IdentityAuth(opts.JWTSecret))

	protected.POST("/users", userHandler.Register)
	protected.GET("/users/me", userHandler.GetProfile)
	protected.PUT("/users/me/email", userHandler.UpdateEmail)
	protected.GET("/users/me/eligibility", userHandler.GetEligibility)

	wallet := protected.Group("/wallet")
	wallet.POST("/deposit", userHandler.Deposit)
	wallet.POST("/withdraw", userHandler.Withdraw)
	wallet.GET("/transactions", userHandler.GetTransactions)

	ustbills := protected.Group("/ustbills")
	ustbills.GET("", ustbillHandler.ListUSTBills)
	ustbills.GET("/active", ustbillHandler.ListActiveUSTBills)
	ustbills.GET("/:id", ustbillHandler.GetUSTBill)
	ustbills.GET("/:id/availability", ustbillHandler.GetAvailability)
	ustbills.GET("/:id/cost", ustbillHandler.GetPurchaseCost)

	holdings := protected.Group("/holdings")
	holdings.POST("", holdingHandler.BuyTokens)
	holdings.GET("", holdingHandler.ListHoldings)
	holdings.GET("/:id", holdingHandler.GetHolding)
	holdings.GET("/:id/value", holdingHandler.GetCurrentValue)
	holdings.GET("/:id/maturity-value", holdingHandler.GetMaturityValue)
	holdings.GET("/:id/projection", holdingHandler.GetYieldProjection)
	holdings.POST("/:id/sell", holdingHandler.SellHolding)

	protected.GET("/config", platformHandler.GetConfig)
	protected.GET("/metrics/trading", platformHandler.GetTradingMetrics)
	protected.GET("/treasury-rates", platformHandler.GetTreasuryRates)

	// Privileged routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly(svc.Admin))

	admin.GET("/users/:identity", userHandler.GetUser)
	admin.PUT("/users/:identity/kyc", userHandler.UpdateKYCStatus)
	admin.PUT("/users/:identity/active", userHandler.SetActive)

	admin.POST("/ustbills", ustbillHandler.CreateUSTBill)
	admin.POST("/ustbills/sweep", ustbillHandler.RunSweep)
	admin.POST("/ustbills/:id/cancel", ustbillHandler.CancelUSTBill)

	admin.PUT("/config", platformHandler.UpdateConfig)
	admin.GET("/stats", platformHandler.GetStorageStats)
	admin.POST("/treasury-rates/fetch", platformHandler.FetchTreasuryRates)

	admin.GET("/broker-purchases", brokerHandler.ListPurchases)
	admin.POST("/broker-purchases", brokerHandler.AddPurchase)

	admin.GET("/identities", adminHandler.ListAdmins)
	admin.POST("/identities", adminHandler.GrantAdmin)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
