package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/server/http/handlers"
	"github.com/polkiloo/dealerflow/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.DealerFacade, parser middleware.TokenParser, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(cors.New(corsConfig()))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	orderHandler := handlers.NewOrderHandler(facade)
	vehicleHandler := handlers.NewVehicleHandler(facade)
	ownershipHandler := handlers.NewOwnershipHandler(facade)
	invitationHandler := handlers.NewInvitationHandler(facade)
	systemHandler := handlers.NewSystemHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", systemHandler.Health)
	api.GET("/schema/:name", systemHandler.Schema)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(parser))

	authed.GET("/orders/:kind/:id", orderHandler.Get)
	authed.POST("/orders/:kind/:id/status", orderHandler.Transition)
	authed.POST("/orders/:kind/:id/payments", orderHandler.RegisterPayment)

	authed.GET("/vehicles/:id", vehicleHandler.Get)
	authed.GET("/vehicles/:id/calculation", vehicleHandler.Calculation)
	authed.POST("/vehicles/stock", vehicleHandler.RecalculateStock)
	authed.GET("/calculations/export", vehicleHandler.Export)

	authed.POST("/ownerships", ownershipHandler.Propose)
	authed.POST("/ownerships/:id/accept", ownershipHandler.Accept)
	authed.POST("/ownerships/:id/reject", ownershipHandler.Reject)

	authed.POST("/quotes/:id/invitations", invitationHandler.Create)
	authed.POST("/invitations/:id/send", invitationHandler.Send)
	authed.POST("/invitations/:id/accept", invitationHandler.Accept)
	authed.POST("/invitations/:id/reject", invitationHandler.Reject)

	return engine
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization", middleware.RequestIDHeader)
	cfg.AddExposeHeaders(middleware.RequestIDHeader, "Content-Disposition")
	return cfg
}
