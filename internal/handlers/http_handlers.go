package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"districtlottery/internal/engine"
	"districtlottery/internal/models"
	"districtlottery/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
)

const (
	tenantHeader = "X-Tenant-ID"
	tenantCookie = "lottery_tenant"
	tenantKey    = "tenantID"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service *services.LotteryService
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.LotteryService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// RegisterPublicRoutes registers routes that need no tenant.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterTenantRoutes registers the lottery API. The group must run TenantMiddleware.
func (h *HTTPHandler) RegisterTenantRoutes(router gin.IRouter) {
	api := router.Group("/api")
	api.GET("/participants", h.GetParticipants)
	api.PUT("/participants", h.ReplaceParticipants)
	api.GET("/zones", h.GetZones)
	api.GET("/clubs", h.GetClubs)
	api.GET("/prizes", h.GetPrizes)
	api.PUT("/prizes", h.ReplacePrizes)
	api.GET("/prizes/summary", h.GetPrizeSummary)
	api.POST("/prizes/:id/bonus", h.AddBonus)
	api.GET("/eligible", h.GetEligible)
	api.GET("/round", h.GetRound)
	api.PUT("/round", h.SelectRound)
	api.POST("/round/start", h.StartDraw)
	api.POST("/round/stop", h.StopDraw)
	api.POST("/round/abort", h.AbortDraw)
	api.GET("/winners", h.GetWinners)
	api.DELETE("/winners", h.ClearWinners)
	api.DELETE("/winners/:id", h.DeleteWinner)
	api.DELETE("/session", h.ClearSession)
}

// TenantMiddleware identifies the tenant from the X-Tenant-ID header or the
// tenant cookie, issuing a new cookie when neither is present.
func (h *HTTPHandler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(tenantHeader))
		if tenantID == "" {
			if cookie, err := c.Cookie(tenantCookie); err == nil {
				tenantID = cookie
			}
		}
		if tenantID == "" {
			tenantID = uuid.NewString()
			c.SetCookie(tenantCookie, tenantID, 0, "/", "", false, true)
		}
		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

func tenant(c *gin.Context) string {
	return c.GetString(tenantKey)
}

// GetParticipants returns the roster.
func (h *HTTPHandler) GetParticipants(c *gin.Context) {
	participants, err := h.service.GetParticipants(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// ReplaceParticipants swaps the whole roster.
func (h *HTTPHandler) ReplaceParticipants(c *gin.Context) {
	var req replaceParticipantsRequest
	if !bind(c, &req) {
		return
	}
	if err := h.service.ReplaceParticipants(tenant(c), req.Participants, req.ClearWinners); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(req.Participants)})
}

// GetZones lists the roster's zones and the clubs of each.
func (h *HTTPHandler) GetZones(c *gin.Context) {
	zones, err := h.service.Zones(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	clubs, err := h.service.ZoneClubs(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones, "clubs": clubs})
}

// GetClubs lists the roster's clubs, optionally for one zone.
func (h *HTTPHandler) GetClubs(c *gin.Context) {
	clubs, err := h.service.Clubs(tenant(c), c.Query("zone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clubs": clubs})
}

// GetPrizes lists the prizes of one scope context with remaining slots, or
// the whole catalog without a scope.
func (h *HTTPHandler) GetPrizes(c *gin.Context) {
	scope, ok := queryScope(c, "scope", false)
	if !ok {
		return
	}
	var prizes []services.PrizeState
	var err error
	if scope == "" {
		prizes, err = h.service.AllPrizes(tenant(c))
	} else {
		prizes, err = h.service.GetPrizes(tenant(c), scope, c.Query("context"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// ReplacePrizes swaps the prizes of one scope context.
func (h *HTTPHandler) ReplacePrizes(c *gin.Context) {
	var req replacePrizesRequest
	if !bind(c, &req) {
		return
	}
	scope, err := models.ParseScope(req.Scope)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %q", engine.ErrUnknownScope, req.Scope))
		return
	}
	prizes, err := h.service.ReplacePrizes(tenant(c), scope, req.Context, req.Prizes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// GetPrizeSummary totals slots per scope.
func (h *HTTPHandler) GetPrizeSummary(c *gin.Context) {
	summary, err := h.service.PrizeSummary(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddBonus adds one slot to a prize.
func (h *HTTPHandler) AddBonus(c *gin.Context) {
	prize, err := h.service.AddBonus(tenant(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prize": prize})
}

// GetEligible lists the participants that may be drawn at a scope.
func (h *HTTPHandler) GetEligible(c *gin.Context) {
	scope, ok := queryScope(c, "scope", true)
	if !ok {
		return
	}
	eligibility, err := h.service.GetEligibleParticipants(tenant(c), scope, c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"targetSelected": eligibility.TargetSelected,
		"count":          len(eligibility.Participants),
		"participants":   eligibility.Participants,
	})
}

// GetRound returns the round plan.
func (h *HTTPHandler) GetRound(c *gin.Context) {
	plan, err := h.service.GetRound(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse(plan))
}

// SelectRound changes scope, filter, prize or draw mode.
func (h *HTTPHandler) SelectRound(c *gin.Context) {
	var req selectRoundRequest
	if !bind(c, &req) {
		return
	}
	sel, err := req.selection()
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.service.SelectRound(tenant(c), sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse(plan))
}

// StartDraw opens the drawing window.
func (h *HTTPHandler) StartDraw(c *gin.Context) {
	var req startDrawRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	plan, err := h.service.StartDraw(tenant(c), req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse(plan))
}

// StopDraw reveals and commits the winners.
func (h *HTTPHandler) StopDraw(c *gin.Context) {
	winners, err := h.service.StopDraw(tenant(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// AbortDraw closes the drawing window without recording anything.
func (h *HTTPHandler) AbortDraw(c *gin.Context) {
	if err := h.service.AbortDraw(tenant(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetWinners lists winner records, newest first.
func (h *HTTPHandler) GetWinners(c *gin.Context) {
	scope, ok := queryScope(c, "scope", false)
	if !ok {
		return
	}
	winners, err := h.service.GetWinners(tenant(c), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ClearWinners resets one scope, or the whole ledger without a scope.
func (h *HTTPHandler) ClearWinners(c *gin.Context) {
	scope, ok := queryScope(c, "scope", false)
	if !ok {
		return
	}
	n, err := h.service.ClearWinners(tenant(c), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// DeleteWinner removes one winner record.
func (h *HTTPHandler) DeleteWinner(c *gin.Context) {
	record, err := h.service.DeleteWinner(tenant(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": record})
}

// ClearSession drops all of the tenant's data.
func (h *HTTPHandler) ClearSession(c *gin.Context) {
	h.service.ClearSession(tenant(c))
	c.Status(http.StatusNoContent)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warningf("Rejected %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
		return false
	}
	return true
}

func queryScope(c *gin.Context, key string, required bool) (models.Scope, bool) {
	raw := c.Query(key)
	if raw == "" && !required {
		return "", true
	}
	scope, err := models.ParseScope(raw)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %q", engine.ErrUnknownScope, raw))
		return "", false
	}
	return scope, true
}

// respondError maps domain errors to HTTP status codes. Blocking draw
// conditions are conflicts the caller resolves and retries.
func respondError(c *gin.Context, err error) {
	code := engine.Code(err)
	body := gin.H{"error": err.Error(), "code": code}

	var insufficient *engine.InsufficientCandidatesError
	if errors.As(err, &insufficient) {
		body["eligible"] = insufficient.Eligible
		body["requested"] = insufficient.Requested
	}
	var rosterErr *engine.RosterError
	if errors.As(err, &rosterErr) {
		body["rows"] = rosterErr.Rows
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrPrizeNotFound), errors.Is(err, engine.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownScope), errors.Is(err, engine.ErrInvalidMode),
		errors.Is(err, engine.ErrInvalidPrize), errors.Is(err, engine.ErrInvalidRoster):
		status = http.StatusBadRequest
	case code != "":
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Errorf("Unexpected error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		body["code"] = "INTERNAL"
	}
	c.JSON(status, body)
}
