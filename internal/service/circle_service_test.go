package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/auth"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/storage"
	"github.com/kese-app/goldday/internal/storage/sqlite"
)

func setupService(t *testing.T) *CircleService {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	kv, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		kv.Close()
		os.Remove(tmpFile.Name())
	})

	return NewCircleService(storage.NewCircleStore(kv))
}

func createParams() CreateRoomParams {
	return CreateRoomParams{
		Name:               "Ofis Günü",
		Asset:              models.AssetUSDT,
		ContributionAmount: decimal.RequireFromString("100"),
		Frequency:          models.FrequencyMonthly,
		HostAddress:        "0xhost",
		HostNickname:       "Host",
		HostAvatarID:       1,
	}
}

func TestCreateRoom(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if room.ID == "" {
		t.Error("expected generated room id")
	}
	if room.Status != models.StatusLobby {
		t.Errorf("status: expected lobby, got %s", room.Status)
	}
	if len(room.Participants) != 1 || room.Participants[0].Address != "0xhost" {
		t.Errorf("expected host as sole participant, got %+v", room.Participants)
	}

	persisted, err := svc.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if persisted.Name != "Ofis Günü" {
		t.Errorf("name: expected 'Ofis Günü', got %q", persisted.Name)
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	params := createParams()
	params.Name = ""
	if _, err := svc.CreateRoom(ctx, params); !errors.Is(err, models.ErrValidation) {
		t.Errorf("empty name: expected ErrValidation, got %v", err)
	}

	params = createParams()
	params.ContributionAmount = decimal.Zero
	if _, err := svc.CreateRoom(ctx, params); !errors.Is(err, models.ErrValidation) {
		t.Errorf("zero amount: expected ErrValidation, got %v", err)
	}
}

func TestListRooms_NewestFirst(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		params := createParams()
		params.Name = fmt.Sprintf("Room %d", i)
		room, err := svc.CreateRoom(ctx, params)
		if err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
		ids = append(ids, room.ID)
	}

	rooms, err := svc.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	for i := 0; i < 3; i++ {
		if rooms[i].ID != ids[2-i] {
			t.Errorf("order[%d]: expected %s, got %s", i, ids[2-i], rooms[i].ID)
		}
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetRoom(context.Background(), "nonexistent-id")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinRoom(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	joined, err := svc.JoinRoom(ctx, room.ID, "0xp1", "Ali", 2, "")
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if len(joined.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(joined.Participants))
	}

	if _, err := svc.JoinRoom(ctx, room.ID, "0xp1", "Ali", 2, ""); !errors.Is(err, models.ErrAlreadyMember) {
		t.Errorf("duplicate join: expected ErrAlreadyMember, got %v", err)
	}
	if _, err := svc.JoinRoom(ctx, "nonexistent-id", "0xp2", "Ayşe", 3, ""); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown room: expected ErrNotFound, got %v", err)
	}
}

func TestJoinRoom_Passcode(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	params := createParams()
	params.Passcode = "altin"
	room, err := svc.CreateRoom(ctx, params)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	if _, err := svc.JoinRoom(ctx, room.ID, "0xp1", "Ali", 2, "wrong"); !errors.Is(err, auth.ErrInvalidPasscode) {
		t.Errorf("wrong passcode: expected ErrInvalidPasscode, got %v", err)
	}
	if _, err := svc.JoinRoom(ctx, room.ID, "0xp1", "Ali", 2, "altin"); err != nil {
		t.Errorf("correct passcode: expected success, got %v", err)
	}
}

func TestStartRoom_HostOnly(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, err := svc.JoinRoom(ctx, room.ID, "0xp1", "Ali", 2, ""); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	if _, err := svc.StartRoom(ctx, room.ID, "0xp1"); !errors.Is(err, ErrNotHost) {
		t.Errorf("non-host start: expected ErrNotHost, got %v", err)
	}

	started, err := svc.StartRoom(ctx, room.ID, "0xhost")
	if err != nil {
		t.Fatalf("StartRoom failed: %v", err)
	}
	if started.Status != models.StatusActive {
		t.Errorf("status: expected active, got %s", started.Status)
	}
}

func TestRoomLifecycle(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	for _, p := range []struct{ addr, nick string }{{"0xp1", "Ali"}, {"0xp2", "Ayşe"}} {
		if _, err := svc.JoinRoom(ctx, room.ID, p.addr, p.nick, 2, ""); err != nil {
			t.Fatalf("JoinRoom(%s) failed: %v", p.addr, err)
		}
	}
	if _, err := svc.StartRoom(ctx, room.ID, "0xhost"); err != nil {
		t.Fatalf("StartRoom failed: %v", err)
	}

	// Advancing before everyone paid must fail and change nothing.
	if _, err := svc.AdvanceRound(ctx, room.ID, "0xhost"); !errors.Is(err, models.ErrRoundNotSettled) {
		t.Fatalf("expected ErrRoundNotSettled, got %v", err)
	}
	current, err := svc.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if current.CurrentRound != 1 {
		t.Fatalf("failed advance must not move the round, got %d", current.CurrentRound)
	}

	if _, err := svc.RecordContribution(ctx, room.ID, 1, "0xp1"); err != nil {
		t.Fatalf("RecordContribution failed: %v", err)
	}
	if _, err := svc.RecordContribution(ctx, room.ID, 1, "0xp2"); err != nil {
		t.Fatalf("RecordContribution failed: %v", err)
	}

	advanced, err := svc.AdvanceRound(ctx, room.ID, "0xhost")
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	if advanced.CurrentRound != 2 {
		t.Errorf("current round: expected 2, got %d", advanced.CurrentRound)
	}
	if advanced.Rounds[0].Status != models.RoundSettled {
		t.Errorf("round 1: expected settled, got %s", advanced.Rounds[0].Status)
	}
	if advanced.Rounds[1].PayeeAddress != "0xp1" {
		t.Errorf("round 2 payee: expected 0xp1, got %s", advanced.Rounds[1].PayeeAddress)
	}
}

func TestUpdateMeetingDay(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	updated, err := svc.UpdateMeetingDay(ctx, room.ID, "0xhost", "friday")
	if err != nil {
		t.Fatalf("UpdateMeetingDay failed: %v", err)
	}
	if updated.MeetingDay != "friday" {
		t.Errorf("meeting day: expected friday, got %s", updated.MeetingDay)
	}

	if _, err := svc.UpdateMeetingDay(ctx, room.ID, "0xsomeone", "monday"); !errors.Is(err, ErrNotHost) {
		t.Errorf("non-host: expected ErrNotHost, got %v", err)
	}
}

// Concurrent joins against the same room must not lose participants even
// though every write is a whole-collection replace.
func TestConcurrentJoins(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, createParams())
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	const joiners = 10
	var wg sync.WaitGroup
	errs := make(chan error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.JoinRoom(ctx, room.ID, fmt.Sprintf("0xp%d", i), fmt.Sprintf("P%d", i), 1, "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	}

	final, err := svc.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if len(final.Participants) != joiners+1 {
		t.Errorf("expected %d participants, got %d", joiners+1, len(final.Participants))
	}
}
