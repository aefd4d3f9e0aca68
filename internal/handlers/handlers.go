// Package handlers wires the room, session, wallet and pricing services to
// the HTTP API consumed by the mobile UI.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kese-app/goldday/internal/auth"
	"github.com/kese-app/goldday/internal/ledger"
	"github.com/kese-app/goldday/internal/middleware"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/pricing"
	"github.com/kese-app/goldday/internal/service"
	"github.com/kese-app/goldday/internal/wallet"
)

// Server holds the handler dependencies.
type Server struct {
	rooms    *service.CircleService
	sessions *service.SessionService
	balances *ledger.Aggregator
	prices   *pricing.Cache
	wallet   wallet.Wallet
	jwt      *auth.JWTManager
}

// New creates a Server with the given collaborators.
func New(rooms *service.CircleService, sessions *service.SessionService, balances *ledger.Aggregator, prices *pricing.Cache, w wallet.Wallet, jwt *auth.JWTManager) *Server {
	return &Server{
		rooms:    rooms,
		sessions: sessions,
		balances: balances,
		prices:   prices,
		wallet:   w,
		jwt:      jwt,
	}
}

// Register mounts all routes on the engine. Reads are public; everything
// that mutates a room requires a session token.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.POST("/session", s.createSession)
	api.GET("/rooms", s.listRooms)
	api.GET("/rooms/:id", s.getRoom)
	api.GET("/wallet/balances", s.walletBalances)
	api.POST("/prices/refresh", s.refreshPrice)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(s.jwt))
	authed.POST("/rooms", s.createRoom)
	authed.POST("/rooms/:id/join", s.joinRoom)
	authed.POST("/rooms/:id/start", s.startRoom)
	authed.POST("/rooms/:id/contributions", s.recordContribution)
	authed.POST("/rooms/:id/advance", s.advanceRound)
	authed.PUT("/rooms/:id/meeting-day", s.updateMeetingDay)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pricing_ready": s.prices.Ready()})
}

type sessionRequest struct {
	Address  string `json:"address" binding:"required"`
	Nickname string `json:"nickname"`
}

func (s *Server) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	token, err := s.sessions.IssueToken(req.Address, req.Nickname)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, auth.ErrWeakPasscode):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidPasscode), errors.Is(err, service.ErrNotHost):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyMember),
		errors.Is(err, models.ErrNotAMember),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInsufficientMembers),
		errors.Is(err, models.ErrPayeeCannotContribute),
		errors.Is(err, models.ErrUnknownRound),
		errors.Is(err, models.ErrRoundNotSettled):
		status = http.StatusConflict
	case errors.Is(err, pricing.ErrNotInitialized), errors.Is(err, pricing.ErrRateUnavailable):
		status = http.StatusServiceUnavailable
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
