// Package service orchestrates room persistence and the circle state
// machine behind the public API.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/auth"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/storage"
)

// ErrNotHost is returned when a host-only operation is attempted by
// another participant.
var ErrNotHost = errors.New("only the host can do that")

// CircleService implements the room API on top of CircleStore. Mutations
// against the same room id are mutually exclusive: each id has its own
// mutex held for the whole load-mutate-save cycle, so concurrent joins can
// never drop a participant.
type CircleService struct {
	store *storage.CircleStore
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCircleService creates a CircleService backed by the given store.
func NewCircleService(store *storage.CircleStore) *CircleService {
	return &CircleService{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
		locks: make(map[string]*sync.Mutex),
	}
}

// CreateRoomParams are the caller-supplied fields for a new room.
type CreateRoomParams struct {
	Name               string
	Asset              models.Asset
	ContributionAmount decimal.Decimal
	Frequency          models.Frequency
	MeetingDay         string
	Passcode           string
	HostAddress        string
	HostNickname       string
	HostAvatarID       int
}

// CreateRoom creates a lobby room with the host as sole participant and
// persists it at the head of the collection (rooms list newest first).
func (s *CircleService) CreateRoom(ctx context.Context, params CreateRoomParams) (*models.Circle, error) {
	slog.Info("CreateRoom request received", "name", params.Name, "asset", params.Asset, "host", params.HostAddress)

	passcodeHash, err := auth.HashPasscode(params.Passcode)
	if err != nil {
		return nil, err
	}

	room, err := models.NewCircle(
		s.newID(),
		params.Name,
		params.Asset,
		params.ContributionAmount,
		params.Frequency,
		models.Participant{
			Address:  params.HostAddress,
			Nickname: params.HostNickname,
			AvatarID: params.HostAvatarID,
		},
		s.now(),
	)
	if err != nil {
		return nil, err
	}
	room.MeetingDay = params.MeetingDay
	room.PasscodeHash = passcodeHash

	err = s.store.Update(ctx, func(rooms []*models.Circle) ([]*models.Circle, error) {
		return append([]*models.Circle{room}, rooms...), nil
	})
	if err != nil {
		slog.Error("CreateRoom failed", "error", err)
		return nil, err
	}

	slog.Info("Room created", "room_id", room.ID)
	return room, nil
}

// ListRooms returns all persisted rooms, most recently created first.
func (s *CircleService) ListRooms(ctx context.Context) ([]*models.Circle, error) {
	rooms, err := s.store.Load(ctx)
	if err != nil {
		slog.Error("ListRooms failed", "error", err)
		return nil, err
	}
	return rooms, nil
}

// GetRoom retrieves one room by id.
func (s *CircleService) GetRoom(ctx context.Context, id string) (*models.Circle, error) {
	rooms, err := s.store.Load(ctx)
	if err != nil {
		slog.Error("GetRoom failed", "room_id", id, "error", err)
		return nil, err
	}
	for _, r := range rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, models.ErrNotFound
}

// JoinRoom adds a participant to a lobby room, checking the passcode for
// private rooms.
func (s *CircleService) JoinRoom(ctx context.Context, id, address, nickname string, avatarID int, passcode string) (*models.Circle, error) {
	slog.Info("JoinRoom request received", "room_id", id, "address", address)
	return s.mutate(ctx, id, func(room *models.Circle) error {
		if err := auth.CheckPasscode(room.PasscodeHash, passcode); err != nil {
			return err
		}
		return room.AddParticipant(address, nickname, avatarID, s.now())
	})
}

// StartRoom activates a lobby room. Host only.
func (s *CircleService) StartRoom(ctx context.Context, id, callerAddress string) (*models.Circle, error) {
	slog.Info("StartRoom request received", "room_id", id, "caller", callerAddress)
	return s.mutate(ctx, id, func(room *models.Circle) error {
		if room.HostAddress != callerAddress {
			return ErrNotHost
		}
		return room.Activate(s.now())
	})
}

// RecordContribution marks the caller as having paid into the given round.
func (s *CircleService) RecordContribution(ctx context.Context, id string, round int, address string) (*models.Circle, error) {
	slog.Info("RecordContribution request received", "room_id", id, "round", round, "address", address)
	return s.mutate(ctx, id, func(room *models.Circle) error {
		return room.RecordContribution(round, address)
	})
}

// AdvanceRound settles the current round and moves the rotation forward.
// Host only.
func (s *CircleService) AdvanceRound(ctx context.Context, id, callerAddress string) (*models.Circle, error) {
	slog.Info("AdvanceRound request received", "room_id", id, "caller", callerAddress)
	return s.mutate(ctx, id, func(room *models.Circle) error {
		if room.HostAddress != callerAddress {
			return ErrNotHost
		}
		return room.AdvanceRound(s.now())
	})
}

// UpdateMeetingDay changes the room's meeting anchor. Host only.
func (s *CircleService) UpdateMeetingDay(ctx context.Context, id, callerAddress, day string) (*models.Circle, error) {
	slog.Info("UpdateMeetingDay request received", "room_id", id, "day", day)
	return s.mutate(ctx, id, func(room *models.Circle) error {
		if room.HostAddress != callerAddress {
			return ErrNotHost
		}
		return room.UpdateMeetingDay(day)
	})
}

// mutate runs fn against the identified room under its per-id lock and
// persists the result. A failing fn (or a failing write) leaves the stored
// collection untouched.
func (s *CircleService) mutate(ctx context.Context, id string, fn func(room *models.Circle) error) (*models.Circle, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	var result *models.Circle
	err := s.store.Update(ctx, func(rooms []*models.Circle) ([]*models.Circle, error) {
		for _, r := range rooms {
			if r.ID == id {
				if err := fn(r); err != nil {
					return nil, err
				}
				result = r
				return rooms, nil
			}
		}
		return nil, models.ErrNotFound
	})
	if err != nil {
		slog.Warn("Room mutation failed", "room_id", id, "error", err)
		return nil, err
	}
	return result, nil
}

func (s *CircleService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
