package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CircleStatus is the lifecycle state of a room.
// Transitions are monotonic: lobby -> active -> completed.
type CircleStatus string

const (
	StatusLobby     CircleStatus = "lobby"
	StatusActive    CircleStatus = "active"
	StatusCompleted CircleStatus = "completed"
)

// ParticipantStatus reflects a participant's standing in the current round.
type ParticipantStatus string

const (
	ParticipantJoined  ParticipantStatus = "joined"
	ParticipantPending ParticipantStatus = "pending"
	ParticipantPaid    ParticipantStatus = "paid"
)

// RoundStatus is the settlement state of one rotation cycle.
type RoundStatus string

const (
	RoundOpen    RoundStatus = "open"
	RoundSettled RoundStatus = "settled"
)

// Participant is a member of a Circle, keyed by wallet address.
type Participant struct {
	Address  string            `json:"address"`
	Nickname string            `json:"nickname"`
	AvatarID int               `json:"avatarId"`
	Status   ParticipantStatus `json:"status"`
	JoinDate int64             `json:"joinDate"`
}

// Round is one rotation cycle. Contributions holds the addresses that have
// paid in; the payee never appears in it.
type Round struct {
	Index         int         `json:"index"`
	PayeeAddress  string      `json:"payeeAddress"`
	Contributions []string    `json:"contributions"`
	DueAt         int64       `json:"dueAt"`
	Status        RoundStatus `json:"status"`
}

// HasContribution reports whether address has paid into this round.
func (r *Round) HasContribution(address string) bool {
	for _, a := range r.Contributions {
		if a == address {
			return true
		}
	}
	return false
}

// Circle is a gold day room. Participants preserves join order; once the
// room is active, RotationOrder is a frozen permutation of their addresses
// (host first) and CurrentRound indexes into it, 1-based.
type Circle struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Asset              Asset           `json:"asset"`
	ContributionAmount decimal.Decimal `json:"contributionAmount"`
	Frequency          Frequency       `json:"frequency"`
	MeetingDay         string          `json:"meetingDay,omitempty"`
	HostAddress        string          `json:"hostAddress"`
	Status             CircleStatus    `json:"status"`
	CurrentRound       int             `json:"currentRound"`
	RotationOrder      []string        `json:"rotationOrder,omitempty"`
	Participants       []Participant   `json:"participants"`
	Rounds             []Round         `json:"rounds,omitempty"`
	PasscodeHash       string          `json:"passcodeHash,omitempty"`
	CreatedAt          int64           `json:"createdAt"`
}

// NewCircle creates a room in the lobby state with the host as its sole
// participant. CurrentRound stays 0 until activation.
func NewCircle(id, name string, asset Asset, amount decimal.Decimal, frequency Frequency, host Participant, now time.Time) (*Circle, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: room name required", ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: contribution amount must be positive", ErrValidation)
	}
	if host.Address == "" {
		return nil, fmt.Errorf("%w: host address required", ErrValidation)
	}
	host.Status = ParticipantJoined
	host.JoinDate = now.Unix()
	return &Circle{
		ID:                 id,
		Name:               name,
		Asset:              asset,
		ContributionAmount: amount,
		Frequency:          frequency,
		HostAddress:        host.Address,
		Status:             StatusLobby,
		Participants:       []Participant{host},
		CreatedAt:          now.Unix(),
	}, nil
}

// ParticipantByAddress returns the member with the given address, or nil.
func (c *Circle) ParticipantByAddress(address string) *Participant {
	for i := range c.Participants {
		if c.Participants[i].Address == address {
			return &c.Participants[i]
		}
	}
	return nil
}

// AddParticipant appends a new member. Only possible while the room is in
// the lobby; the rotation is frozen after that.
func (c *Circle) AddParticipant(address, nickname string, avatarID int, now time.Time) error {
	if c.Status != StatusLobby {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidState, c.ID, c.Status)
	}
	if address == "" {
		return fmt.Errorf("%w: participant address required", ErrValidation)
	}
	if c.ParticipantByAddress(address) != nil {
		return ErrAlreadyMember
	}
	c.Participants = append(c.Participants, Participant{
		Address:  address,
		Nickname: nickname,
		AvatarID: avatarID,
		Status:   ParticipantJoined,
		JoinDate: now.Unix(),
	})
	return nil
}

// Activate freezes the rotation order from the current join order and opens
// round 1 with the host as payee. A room of one cannot rotate.
func (c *Circle) Activate(now time.Time) error {
	if c.Status != StatusLobby {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidState, c.ID, c.Status)
	}
	if len(c.Participants) < 2 {
		return ErrInsufficientMembers
	}
	order := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		order[i] = p.Address
	}
	c.RotationOrder = order
	c.Status = StatusActive
	c.CurrentRound = 1
	c.openRound(now)
	return nil
}

// RecordContribution marks address as having paid into the given round.
// Re-recording an existing contribution is a no-op.
func (c *Circle) RecordContribution(roundIndex int, address string) error {
	if c.Status != StatusActive {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidState, c.ID, c.Status)
	}
	r := c.round(roundIndex)
	if r == nil {
		return fmt.Errorf("%w: round %d", ErrUnknownRound, roundIndex)
	}
	p := c.ParticipantByAddress(address)
	if p == nil {
		return ErrNotAMember
	}
	if address == r.PayeeAddress {
		return ErrPayeeCannotContribute
	}
	if r.HasContribution(address) {
		return nil
	}
	if r.Status == RoundSettled {
		return fmt.Errorf("%w: round %d is settled", ErrInvalidState, roundIndex)
	}
	r.Contributions = append(r.Contributions, address)
	p.Status = ParticipantPaid
	return nil
}

// OutstandingContributors lists the non-payee members that have not yet
// paid into the given round.
func (c *Circle) OutstandingContributors(roundIndex int) []string {
	r := c.round(roundIndex)
	if r == nil {
		return nil
	}
	var missing []string
	for _, p := range c.Participants {
		if p.Address == r.PayeeAddress || r.HasContribution(p.Address) {
			continue
		}
		missing = append(missing, p.Address)
	}
	return missing
}

// AdvanceRound settles the current round and opens the next one, or
// completes the room after the last rotation slot. It refuses unless every
// non-payee participant has a recorded contribution: the payout guarantee
// is enforced here, not in the UI.
func (c *Circle) AdvanceRound(now time.Time) error {
	if c.Status != StatusActive {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidState, c.ID, c.Status)
	}
	cur := c.round(c.CurrentRound)
	if cur == nil {
		return fmt.Errorf("%w: round %d", ErrUnknownRound, c.CurrentRound)
	}
	if len(c.OutstandingContributors(cur.Index)) > 0 {
		return ErrRoundNotSettled
	}
	cur.Status = RoundSettled
	c.CurrentRound++
	if c.CurrentRound > len(c.RotationOrder) {
		c.Status = StatusCompleted
		return nil
	}
	c.openRound(now)
	return nil
}

// UpdateMeetingDay changes the meeting anchor. Allowed in lobby and active
// rooms; completed rooms are read-only.
func (c *Circle) UpdateMeetingDay(day string) error {
	if c.Status == StatusCompleted {
		return fmt.Errorf("%w: room %s is completed", ErrInvalidState, c.ID)
	}
	if day == "" {
		return fmt.Errorf("%w: meeting day required", ErrValidation)
	}
	c.MeetingDay = day
	return nil
}

func (c *Circle) round(index int) *Round {
	for i := range c.Rounds {
		if c.Rounds[i].Index == index {
			return &c.Rounds[i]
		}
	}
	return nil
}

func (c *Circle) openRound(now time.Time) {
	c.Rounds = append(c.Rounds, Round{
		Index:        c.CurrentRound,
		PayeeAddress: c.RotationOrder[c.CurrentRound-1],
		DueAt:        c.Frequency.NextDue(now.Unix()),
		Status:       RoundOpen,
	})
	// Everyone starts the new cycle unpaid.
	for i := range c.Participants {
		c.Participants[i].Status = ParticipantJoined
	}
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
