package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/middleware"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/service"
)

// roomView is the API shape of a room. It shadows the stored passcode hash
// and reports only whether the room is locked, plus who still owes the
// current round.
type roomView struct {
	*models.Circle
	PasscodeHash string   `json:"passcodeHash,omitempty"`
	Locked       bool     `json:"locked"`
	Outstanding  []string `json:"outstanding,omitempty"`
}

func view(room *models.Circle) roomView {
	v := roomView{
		Circle: room,
		Locked: room.PasscodeHash != "",
	}
	if room.Status == models.StatusActive {
		v.Outstanding = room.OutstandingContributors(room.CurrentRound)
	}
	return v
}

func views(rooms []*models.Circle) []roomView {
	out := make([]roomView, len(rooms))
	for i, r := range rooms {
		out[i] = view(r)
	}
	return out
}

type createRoomRequest struct {
	Name               string          `json:"name" binding:"required"`
	Asset              string          `json:"asset" binding:"required"`
	ContributionAmount decimal.Decimal `json:"contributionAmount"`
	Frequency          string          `json:"frequency" binding:"required"`
	MeetingDay         string          `json:"meetingDay"`
	Passcode           string          `json:"passcode"`
	AvatarID           int             `json:"avatarId"`
}

func (s *Server) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	asset, err := models.ParseAsset(req.Asset)
	if err != nil {
		writeError(c, err)
		return
	}
	frequency, err := models.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(c, err)
		return
	}

	room, err := s.rooms.CreateRoom(c.Request.Context(), service.CreateRoomParams{
		Name:               req.Name,
		Asset:              asset,
		ContributionAmount: req.ContributionAmount,
		Frequency:          frequency,
		MeetingDay:         req.MeetingDay,
		Passcode:           req.Passcode,
		HostAddress:        middleware.GetAddress(c),
		HostNickname:       middleware.GetNickname(c),
		HostAvatarID:       req.AvatarID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view(room))
}

func (s *Server) listRooms(c *gin.Context) {
	rooms, err := s.rooms.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views(rooms))
}

func (s *Server) getRoom(c *gin.Context) {
	room, err := s.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}

type joinRoomRequest struct {
	Nickname string `json:"nickname"`
	AvatarID int    `json:"avatarId"`
	Passcode string `json:"passcode"`
}

func (s *Server) joinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	nickname := req.Nickname
	if nickname == "" {
		nickname = middleware.GetNickname(c)
	}
	room, err := s.rooms.JoinRoom(c.Request.Context(), c.Param("id"), middleware.GetAddress(c), nickname, req.AvatarID, req.Passcode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}

func (s *Server) startRoom(c *gin.Context) {
	room, err := s.rooms.StartRoom(c.Request.Context(), c.Param("id"), middleware.GetAddress(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}

type contributionRequest struct {
	Round int `json:"round" binding:"required"`
}

func (s *Server) recordContribution(c *gin.Context) {
	var req contributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	room, err := s.rooms.RecordContribution(c.Request.Context(), c.Param("id"), req.Round, middleware.GetAddress(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}

func (s *Server) advanceRound(c *gin.Context) {
	room, err := s.rooms.AdvanceRound(c.Request.Context(), c.Param("id"), middleware.GetAddress(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}

type meetingDayRequest struct {
	MeetingDay string `json:"meetingDay" binding:"required"`
}

func (s *Server) updateMeetingDay(c *gin.Context) {
	var req meetingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	room, err := s.rooms.UpdateMeetingDay(c.Request.Context(), c.Param("id"), middleware.GetAddress(c), req.MeetingDay)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(room))
}
