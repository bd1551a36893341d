package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter configures the Gin engine. Everything under /api requires the API token.
func NewRouter(h *Handler, apiToken string, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(LogMiddleware(log), gin.Recovery())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(AuthMiddleware(apiToken))

	api.GET("/positions", h.ListPositions)
	api.GET("/positions/total", h.GetTotal)
	api.POST("/positions", h.AddPosition)
	api.PUT("/positions/:id", h.UpdatePosition)
	api.DELETE("/positions/:id", h.RemovePosition)
	api.DELETE("/categories/:category/positions", h.RemoveCategory)

	api.GET("/history", h.GetHistory)
	api.GET("/history/summary", h.GetHistorySummary)
	api.GET("/networth", h.GetNetWorth)

	api.GET("/tickers", h.ListTickers)
	api.POST("/tickers", h.SaveTicker)
	api.GET("/tickers/:symbol", h.IsTickerSaved)
	api.DELETE("/tickers/:symbol", h.RemoveTicker)

	api.GET("/export.xlsx", h.ExportXLSX)

	return r
}
