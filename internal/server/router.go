// Package server exposes the bot's read-only ops surface: health, store
// statistics, wall browsing, and a websocket tail of outbound chat lines.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/store"
)

var (
	errMissingStore      = errors.New("store dependency required")
	errMissingDispatcher = errors.New("line dispatcher dependency required")
)

type Dependencies struct {
	Store      *store.Service
	Dispatcher *LineDispatcher
	Logger     *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Dispatcher == nil {
		return nil, errMissingDispatcher
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET("/api/stats", handler.handleStats)
	router.GET("/api/wall", handler.handleWall)
	router.GET("/ws/tail", handler.handleTail)

	return router, nil
}

type httpHandler struct {
	store      *store.Service
	dispatcher *LineDispatcher
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Summarize())
}

type wallQuotePayload struct {
	Index     string    `json:"index"`
	Nick      string    `json:"nick"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type wallPagePayload struct {
	Page   int                `json:"page"`
	Total  int                `json:"total"`
	Quotes []wallQuotePayload `json:"quotes"`
}

func (h *httpHandler) handleWall(c *gin.Context) {
	page := 0
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_page"})
			return
		}
		page = parsed
	}

	quotes, total := h.store.WallPage(page)
	response := wallPagePayload{
		Page:   page,
		Total:  total,
		Quotes: make([]wallQuotePayload, 0, len(quotes)),
	}
	for _, quote := range quotes {
		response.Quotes = append(response.Quotes, wallQuotePayload{
			Index:     quote.Index,
			Nick:      quote.AuthorNick,
			Text:      quote.Text,
			CreatedAt: quote.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleTail(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	stream, cancel := h.dispatcher.Subscribe(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-stream:
			if err := conn.WriteJSON(message); err != nil {
				return
			}
		}
	}
}
