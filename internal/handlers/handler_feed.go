package handlers

import (
	"net/http"
	"sync"

	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/core/reconcile"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// feedSession pairs a live reconcile session with the firm that opened it,
// so command endpoints cannot address another tenant's session.
type feedSession struct {
	firmID  string
	session *reconcile.Session
}

// feedHandler handles the realtime receipt feed: one SSE stream per client
// plus command endpoints addressing the stream's session by ID.
type feedHandler struct {
	feedService portssvc.FeedSvcFacade

	mu       sync.Mutex
	sessions map[string]*feedSession
}

// registerFeedRoutes registers routes related to the realtime feed.
func registerFeedRoutes(rg *gin.RouterGroup, feedService portssvc.FeedSvcFacade) {
	h := &feedHandler{
		feedService: feedService,
		sessions:    map[string]*feedSession{},
	}

	feed := rg.Group("/feed")
	{
		feed.GET("/stream", h.stream)
		feed.POST("/:sid/filter", h.setFilter)
		feed.POST("/:sid/open", h.openDetail)
		feed.POST("/:sid/close", h.closeDetail)
		feed.POST("/:sid/arm", h.armLocalAction)
	}
}

// stream godoc
// @Summary Open the receipt feed stream
// @Description Opens a server-sent-events stream. The first event names the session; subsequent events carry feed directives (list refreshes, detail updates, auto-open and notification cues). The stream ends when the change feed disconnects or the client goes away.
// @Tags feed
// @Produce text/event-stream
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param clientID query string false "Client filter or 'all'"
// @Param processedBy query string false "Team member filter or 'all'"
// @Param search query string false "Free text filter"
// @Param sort query string false "desc (default) or asc"
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /feed/stream [get]
func (h *feedHandler) stream(c *gin.Context) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	session := h.feedService.OpenSession(firmID, params.ToFilter())
	sessionID := uuid.NewString()

	h.mu.Lock()
	h.sessions[sessionID] = &feedSession{firmID: firmID, session: session}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.sessions, sessionID)
		h.mu.Unlock()
		session.Close()
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.SSEvent("session", dto.FeedSessionResponse{SessionID: sessionID})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case directive, open := <-session.Directives():
			if !open {
				return
			}
			c.SSEvent("directive", directive)
			c.Writer.Flush()
		}
	}
}

// lookup resolves a session ID for the calling firm. It answers not-found
// for foreign sessions so IDs cannot be probed across tenants.
func (h *feedHandler) lookup(c *gin.Context) (*reconcile.Session, bool) {
	firmID, ok := middleware.GetFirmIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}

	h.mu.Lock()
	fs := h.sessions[c.Param("sid")]
	h.mu.Unlock()

	if fs == nil || fs.firmID != firmID {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Feed session not found"})
		return nil, false
	}
	return fs.session, true
}

// setFilter godoc
// @Summary Replace the session filter
// @Description Replaces the filter tuple. A changed filter discards the cached list and triggers a fresh list directive.
// @Tags feed
// @Accept json
// @Param sid path string true "Session ID"
// @Param filter body dto.FeedFilterRequest true "Filter tuple"
// @Success 202
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /feed/{sid}/filter [post]
func (h *feedHandler) setFilter(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.FeedFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	session.SetFilter(req.ToFilter())
	c.Status(http.StatusAccepted)
}

// openDetail godoc
// @Summary Open a receipt detail in the session
// @Tags feed
// @Accept json
// @Param sid path string true "Session ID"
// @Param receipt body dto.FeedReceiptRequest true "Receipt to open"
// @Success 202
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /feed/{sid}/open [post]
func (h *feedHandler) openDetail(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.FeedReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	session.OpenDetail(req.ReceiptID)
	c.Status(http.StatusAccepted)
}

// closeDetail godoc
// @Summary Close the session's open detail
// @Tags feed
// @Param sid path string true "Session ID"
// @Success 202
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /feed/{sid}/close [post]
func (h *feedHandler) closeDetail(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	session.CloseDetail()
	c.Status(http.StatusAccepted)
}

// armLocalAction godoc
// @Summary Mark a receipt change as locally initiated
// @Description Arms the session so the next change event for the receipt neither auto-opens it nor raises a notification. The flag is one-shot.
// @Tags feed
// @Accept json
// @Param sid path string true "Session ID"
// @Param receipt body dto.FeedReceiptRequest true "Receipt about to change"
// @Success 202
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /feed/{sid}/arm [post]
func (h *feedHandler) armLocalAction(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	var req dto.FeedReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	session.MarkLocalAction(req.ReceiptID)
	c.Status(http.StatusAccepted)
}
