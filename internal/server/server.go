// Package server exposes the bill service as a JSON HTTP API.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairshare/fairshare/internal/middleware"
	"github.com/fairshare/fairshare/internal/service"
)

// Server holds the HTTP layer's dependencies.
type Server struct {
	svc *service.BillService
}

// New creates a Server around a bill service.
func New(svc *service.BillService) *Server {
	return &Server{svc: svc}
}

// Router builds the gin engine with middleware and all routes registered.
func (s *Server) Router(corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/bills", s.createBill)
		api.POST("/bills/parse", s.parseBill)
		api.POST("/bills/demo", s.createDemoBill)
		api.GET("/bills/:id", s.getBill)
		api.GET("/bills/:id/settlement", s.getSettlement)
		api.DELETE("/bills/:id", s.deleteBill)

		api.PUT("/bills/:id/items/:itemID/allocations/:participantID", s.setAllocationWeight)
		api.POST("/bills/:id/items", s.upsertItem)
		api.PUT("/bills/:id/items/:itemID", s.upsertItem)
		api.DELETE("/bills/:id/items/:itemID", s.deleteItem)

		api.POST("/bills/:id/participants", s.addParticipant)
		api.PUT("/bills/:id/participants/:participantID", s.renameParticipant)
		api.DELETE("/bills/:id/participants/:participantID", s.deleteParticipant)
		api.GET("/bills/:id/participants/:participantID/payment-link", s.paymentLink)

		api.PUT("/bills/:id/modifiers/:key", s.setModifier)
	}

	return r
}
