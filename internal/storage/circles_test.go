package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/models"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	data    map[string][]byte
	failPut bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(ctx context.Context, key string, value []byte) error {
	if m.failPut {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Close() error { return nil }

func newTestRoom(t *testing.T) *models.Circle {
	t.Helper()
	room, err := models.NewCircle(
		"room-1",
		"Ofis Günü",
		models.AssetXAUT,
		decimal.RequireFromString("0.25"),
		models.FrequencyWeekly,
		models.Participant{Address: "0xhost", Nickname: "Host", AvatarID: 1},
		time.Unix(1700000000, 0),
	)
	if err != nil {
		t.Fatalf("NewCircle failed: %v", err)
	}
	return room
}

func TestLoad_Empty(t *testing.T) {
	store := NewCircleStore(newMemKV())

	rooms, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("expected empty collection, got %d rooms", len(rooms))
	}
}

func TestRoundTrip(t *testing.T) {
	store := NewCircleStore(newMemKV())
	ctx := context.Background()

	room := newTestRoom(t)
	if err := room.AddParticipant("0xp1", "Ali", 2, time.Unix(1700000100, 0)); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := room.Activate(time.Unix(1700000200, 0)); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := room.RecordContribution(1, "0xp1"); err != nil {
		t.Fatalf("RecordContribution failed: %v", err)
	}

	err := store.Update(ctx, func(rooms []*models.Circle) ([]*models.Circle, error) {
		return append([]*models.Circle{room}, rooms...), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 room, got %d", len(loaded))
	}

	// Structural equality via canonical JSON; decimal fields must survive
	// the trip exactly.
	want, _ := json.Marshal(room)
	got, _ := json.Marshal(loaded[0])
	if string(want) != string(got) {
		t.Errorf("round-trip mismatch:\nwant %s\ngot  %s", want, got)
	}
	if !loaded[0].ContributionAmount.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("amount: expected 0.25, got %s", loaded[0].ContributionAmount)
	}
}

func TestUpdate_FnErrorWritesNothing(t *testing.T) {
	kv := newMemKV()
	store := NewCircleStore(kv)
	ctx := context.Background()

	err := store.Update(ctx, func(rooms []*models.Circle) ([]*models.Circle, error) {
		return nil, models.ErrNotFound
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected fn error to surface, got %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("failed update must not write")
	}
}

func TestUpdate_PutFailureSurfaces(t *testing.T) {
	kv := newMemKV()
	kv.failPut = true
	store := NewCircleStore(kv)

	room := newTestRoom(t)
	err := store.Update(context.Background(), func(rooms []*models.Circle) ([]*models.Circle, error) {
		return append(rooms, room), nil
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestUpdate_NewestFirstOrderPreserved(t *testing.T) {
	store := NewCircleStore(newMemKV())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		room := newTestRoom(t)
		room.ID = id
		err := store.Update(ctx, func(rooms []*models.Circle) ([]*models.Circle, error) {
			return append([]*models.Circle{room}, rooms...), nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	rooms, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if rooms[i].ID != id {
			t.Errorf("order[%d]: expected %s, got %s", i, id, rooms[i].ID)
		}
	}
}
