package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/goalfolio-backend/internal/adapter/xlsx"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/goalfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goalfolio-backend/internal/usecase/valuation"
	"github.com/simaogato/goalfolio-backend/internal/usecase/watchlist"
)

// Handler serves the portfolio API
type Handler struct {
	Ledger    *ledger.Service
	History   *valuation.Service
	Watchlist *watchlist.Service
	Dashboard *dashboard.DashboardService

	now func() time.Time
}

func NewHandler(
	ledgerService *ledger.Service,
	history *valuation.Service,
	watchlistService *watchlist.Service,
	dashboardService *dashboard.DashboardService,
) *Handler {
	return &Handler{
		Ledger:    ledgerService,
		History:   history,
		Watchlist: watchlistService,
		Dashboard: dashboardService,
		now:       time.Now,
	}
}

// ---------- request/response shapes ----------

type positionResp struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Symbol      *string         `json:"symbol,omitempty"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MarketValue decimal.Decimal `json:"marketValue"`
	Currency    string          `json:"currency"`
	Notes       *string         `json:"notes,omitempty"`
}

func toPositionResp(p domain.Position) positionResp {
	return positionResp{
		ID:          p.ID.String(),
		Category:    string(p.Category),
		Symbol:      p.Symbol,
		Name:        p.Name,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		MarketValue: p.MarketValue(),
		Currency:    p.Currency,
		Notes:       p.Notes,
	}
}

func toPositionList(positions []domain.Position) []positionResp {
	out := make([]positionResp, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResp(p))
	}
	return out
}

type addPositionReq struct {
	Category  string           `json:"category" binding:"required"`
	Symbol    string           `json:"symbol" binding:"max=16"`
	Name      string           `json:"name" binding:"max=128"`
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Currency  string           `json:"currency" binding:"max=8"`
	Notes     string           `json:"notes" binding:"max=255"`
}

type updatePositionReq struct {
	Symbol    *string          `json:"symbol"`
	Name      *string          `json:"name"`
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Currency  *string          `json:"currency"`
	Notes     *string          `json:"notes"`
}

type saveTickerReq struct {
	Symbol string `json:"symbol" binding:"required,max=16"`
	Name   string `json:"name" binding:"max=128"`
}

// ---------- handlers ----------

// Health reports liveness and the ledger version
func (h *Handler) Health(c *gin.Context) {
	Success(c, gin.H{"status": "ok", "version": h.Ledger.Version()})
}

// ListPositions GET /api/positions?category=
func (h *Handler) ListPositions(c *gin.Context) {
	positions := h.Ledger.Positions()
	if q := c.Query("category"); q != "" {
		category, err := domain.ParseCategory(q)
		if err != nil {
			Error(c, http.StatusBadRequest, CodeInvalidParam, fmt.Sprintf("invalid category %q", q))
			return
		}
		positions = h.Ledger.PositionsIn(category)
	}
	Success(c, gin.H{"positions": toPositionList(positions), "count": len(positions)})
}

// GetTotal GET /api/positions/total
func (h *Handler) GetTotal(c *gin.Context) {
	Success(c, gin.H{"total": h.Ledger.TotalMarketValue()})
}

// AddPosition POST /api/positions
func (h *Handler) AddPosition(c *gin.Context) {
	var req addPositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "invalid request: "+err.Error())
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, fmt.Sprintf("invalid category %q", req.Category))
		return
	}
	if req.Quantity == nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "quantity is required")
		return
	}

	p, err := h.Ledger.AddDraft(c.Request.Context(), ledger.Draft{
		Category:  category,
		Symbol:    req.Symbol,
		Name:      req.Name,
		Quantity:  *req.Quantity,
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
		Notes:     req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": gin.H{"position": toPositionResp(p), "total": h.Ledger.TotalMarketValue()},
	})
}

// UpdatePosition PUT /api/positions/:id
func (h *Handler) UpdatePosition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updatePositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "invalid request: "+err.Error())
		return
	}

	p, found, err := h.Ledger.PatchPosition(c.Request.Context(), id, ledger.Patch{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
		Notes:     req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	if !found {
		Error(c, http.StatusNotFound, CodeNotFound, fmt.Sprintf("position %s not found", id))
		return
	}
	Success(c, gin.H{"position": toPositionResp(p), "total": h.Ledger.TotalMarketValue()})
}

// RemovePosition DELETE /api/positions/:id
func (h *Handler) RemovePosition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Ledger.Remove(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"total": h.Ledger.TotalMarketValue()})
}

// RemoveCategory DELETE /api/categories/:category/positions
func (h *Handler) RemoveCategory(c *gin.Context) {
	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, fmt.Sprintf("invalid category %q", c.Param("category")))
		return
	}
	if err := h.Ledger.RemoveAll(c.Request.Context(), category); err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"total": h.Ledger.TotalMarketValue()})
}

// GetHistory GET /api/history
func (h *Handler) GetHistory(c *gin.Context) {
	series := h.History.Series()
	points := make([]gin.H, 0, len(series))
	for _, p := range series {
		points = append(points, gin.H{"key": p.Key, "value": p.Value})
	}
	Success(c, gin.H{"points": points})
}

// GetHistorySummary GET /api/history/summary
func (h *Handler) GetHistorySummary(c *gin.Context) {
	sum := h.Dashboard.Performance(c.Request.Context())
	Success(c, gin.H{
		"points":        sum.Points,
		"firstKey":      sum.FirstKey,
		"lastKey":       sum.LastKey,
		"first":         sum.First,
		"last":          sum.Last,
		"change":        sum.Change,
		"changePercent": sum.ChangePercent,
		"min":           sum.Min,
		"max":           sum.Max,
		"up":            sum.IsUp(),
	})
}

// GetNetWorth GET /api/networth
func (h *Handler) GetNetWorth(c *gin.Context) {
	result, err := h.Dashboard.GetNetWorth(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	byCategory := make([]gin.H, 0, len(result.ByCategory))
	for _, ct := range result.ByCategory {
		byCategory = append(byCategory, gin.H{
			"category": ct.Category,
			"total":    ct.Total,
			"count":    ct.Count,
			"weight":   ct.Weight.StringFixed(2),
		})
	}
	Success(c, gin.H{
		"total":      result.Total,
		"liquidity":  result.Liquidity,
		"invested":   result.Invested,
		"byCategory": byCategory,
	})
}

// ListTickers GET /api/tickers
func (h *Handler) ListTickers(c *gin.Context) {
	Success(c, gin.H{"tickers": h.Watchlist.Tickers()})
}

// SaveTicker POST /api/tickers
func (h *Handler) SaveTicker(c *gin.Context) {
	var req saveTickerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "invalid request: "+err.Error())
		return
	}
	name := req.Name
	if name == "" {
		name = req.Symbol
	}

	saved, err := h.Watchlist.Save(c.Request.Context(), req.Symbol, name)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"saved": saved})
}

// RemoveTicker DELETE /api/tickers/:symbol
func (h *Handler) RemoveTicker(c *gin.Context) {
	removed, err := h.Watchlist.Remove(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"removed": removed})
}

// IsTickerSaved GET /api/tickers/:symbol
func (h *Handler) IsTickerSaved(c *gin.Context) {
	Success(c, gin.H{"symbol": c.Param("symbol"), "saved": h.Watchlist.IsSaved(c.Param("symbol"))})
}

// ExportXLSX GET /api/export.xlsx
func (h *Handler) ExportXLSX(c *gin.Context) {
	now := h.now()
	snap := xlsx.Snapshot{
		Positions:   h.Ledger.Positions(),
		History:     h.History.Series(),
		GeneratedAt: now,
	}

	c.Header("Content-Type", xlsx.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"goalfolio_%s.xlsx\"", now.Format("20060102")))
	if err := xlsx.Write(c.Writer, snap); err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeServerErr, "export failed")
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "invalid id format")
		return uuid.Nil, false
	}
	return id, true
}
