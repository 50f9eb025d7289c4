package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/middleware"
	"github.com/settleforge/sle_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every write records who acted; the actor header is mandatory on the group.
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	registerAccountRoutes(v1, services.ChartOfAccounts, services.Posting)
	registerOutstandingRoutes(v1, services.Outstanding)
	registerPrepaymentRoutes(v1, services.Prepayment)
	registerJournalRoutes(v1, services.Posting)
	registerSettlementRoutes(v1, services.Settlement)
}
