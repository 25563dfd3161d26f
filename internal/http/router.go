package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/greenroute/backend/internal/config"
	"github.com/greenroute/backend/internal/http/handlers"
	"github.com/greenroute/backend/internal/http/middleware"

	_ "github.com/greenroute/backend/docs"
)

func Router(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(h.Logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, o := range strings.Split(cfg.CORSAllowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", h.Stream)

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		api.GET("/workers", h.WorkersList)
		api.GET("/workers/:id", h.WorkerDetails)
		api.GET("/sites", h.SitesList)
		api.GET("/sites/:id", h.SiteDetails)
		api.GET("/sites/:id/recommendations", h.Recommendations)
		api.GET("/assignments", h.AssignmentsList)
		api.POST("/assignments", h.CreateAssignment)
		api.POST("/assignments/:id/start", h.StartAssignment)
		api.POST("/assignments/:id/complete", h.CompleteAssignment)
		api.POST("/assignments/:id/cancel", h.CancelAssignment)
		api.GET("/customers", h.CustomersList)
		api.GET("/customers/:id", h.CustomerDetails)
		api.GET("/tickets", h.TicketsList)
		api.POST("/tickets", h.CreateTicket)
		api.GET("/tickets/:id", h.TicketDetails)
		api.POST("/tickets/:id/transition", h.TransitionTicket)
		api.GET("/invoices", h.InvoicesList)
		api.POST("/invoices", h.CreateInvoice)
		api.GET("/invoices/:id", h.InvoiceDetails)
		api.POST("/invoices/:id/pay", h.PayInvoice)
		api.GET("/knowledge/regions", h.Regions)
		api.GET("/knowledge/regions/:region", h.RegionFacts)
		api.GET("/knowledge/seasons/:season", h.SeasonActivities)
		api.GET("/knowledge/skills/:skill", h.SkillFacts)
		api.GET("/events", h.EventsList)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/import", h.Import)
		admin.POST("/sites", h.CreateSite)
		admin.POST("/workers/:id/deactivate", h.DeactivateWorker)
		admin.POST("/invoices/:id/cancel", h.CancelInvoice)
		admin.POST("/invoices/sweep", h.SweepInvoices)
		admin.POST("/chat", h.Chat)
		admin.DELETE("/chat/:customer_id", h.ResetChat)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
