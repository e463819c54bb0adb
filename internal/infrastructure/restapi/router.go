package restapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires the API routes. allowedOrigins restricts CORS and WebSocket origins; empty allows all.
func SetupRouter(handler *TransferHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsCfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/session", handler.GetSessionHandler)

		v1.GET("/balances", handler.GetBalancesHandler)
		v1.POST("/balances/refresh", handler.RefreshBalancesHandler)

		v1.GET("/tokens", handler.GetTokensHandler)
		v1.POST("/tokens/refetch", handler.RefetchTokensHandler)

		v1.GET("/transfer", handler.GetTransferHandler)
		v1.PUT("/transfer", handler.UpdateTransferHandler)
		v1.POST("/transfer/submit", handler.SubmitTransferHandler)
		v1.POST("/transfer/reset", handler.ResetTransferHandler)
		v1.GET("/transfer/ws", handler.StreamTransferHandler(newUpgrader(allowedOrigins)))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}
