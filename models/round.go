package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus represents where a round is in its lifecycle.
type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "open"
	RoundStatusClosed    RoundStatus = "closed"
	RoundStatusResolving RoundStatus = "resolving"
	RoundStatusSettled   RoundStatus = "settled"
	RoundStatusSwept     RoundStatus = "swept"
)

// Round represents one betting cycle over a fixed batch of matches.
// Round ids are monotonic and start at 1; id 0 always means "no such round".
type Round struct {
	ID                    int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Status                RoundStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	MatchCount            int         `gorm:"not null;check:match_count > 0" json:"match_count"`
	OpensAt               time.Time   `gorm:"type:timestamptz;not null" json:"opens_at"`
	CutoffAt              time.Time   `gorm:"type:timestamptz;not null" json:"cutoff_at"`
	Seeded                bool        `gorm:"not null;default:false" json:"seeded"`
	CommitHash            []byte      `gorm:"type:bytea" json:"-"`
	EntropyNonce          []byte      `gorm:"type:bytea" json:"-"`
	RandomnessRequestID   *uuid.UUID  `gorm:"type:uuid" json:"randomness_request_id,omitempty"`
	ResolutionRequestedAt *time.Time  `gorm:"type:timestamptz" json:"resolution_requested_at,omitempty"`
	SettledAt             *time.Time  `gorm:"type:timestamptz" json:"settled_at,omitempty"`
	SweptAt               *time.Time  `gorm:"type:timestamptz" json:"swept_at,omitempty"`
	CreatedAt             time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Pools      []MatchPool      `gorm:"foreignKey:RoundID" json:"-"`
	Accounting *RoundAccounting `gorm:"foreignKey:RoundID" json:"-"`
}

// TableName specifies the table name for Round model
func (*Round) TableName() string {
	return "rounds"
}

// IsOpenForBetting reports whether a bet observed at the given instant may be
// accepted. The cutoff is exclusive: a bet at exactly CutoffAt is rejected.
func (r *Round) IsOpenForBetting(at time.Time) bool {
	return r.Status == RoundStatusOpen && r.Seeded && at.Before(r.CutoffAt)
}

// IsSettled reports whether payouts are computable for this round.
func (r *Round) IsSettled() bool {
	return r.Status == RoundStatusSettled || r.Status == RoundStatusSwept
}

// ValidMatchIndex reports whether idx addresses a match in this round.
func (r *Round) ValidMatchIndex(idx int) bool {
	return idx >= 0 && idx < r.MatchCount
}

// MarkSeeded flips the seeded flag exactly once.
func (r *Round) MarkSeeded(commitHash []byte) error {
	if r.Status != RoundStatusOpen {
		return ErrRoundNotOpen
	}
	if r.Seeded {
		return ErrRoundAlreadySeeded
	}
	r.Seeded = true
	r.CommitHash = commitHash
	return nil
}

// Close transitions Open -> Closed at the betting cutoff.
func (r *Round) Close(at time.Time) error {
	if r.Status != RoundStatusOpen {
		return ErrRoundNotOpen
	}
	if at.Before(r.CutoffAt) {
		return ErrRoundNotClosed
	}
	r.Status = RoundStatusClosed
	return nil
}

// MarkResolving transitions Closed -> Resolving, recording the randomness
// request so a second trigger for the same round is rejected.
func (r *Round) MarkResolving(requestID uuid.UUID, at time.Time) error {
	if r.Status == RoundStatusResolving {
		return ErrRoundAlreadyResolving
	}
	if r.Status != RoundStatusClosed {
		return ErrRoundNotClosed
	}
	r.Status = RoundStatusResolving
	r.RandomnessRequestID = &requestID
	r.ResolutionRequestedAt = &at
	return nil
}

// ResolutionTimedOut reports whether a pending resolution request has
// exceeded the configured timeout.
func (r *Round) ResolutionTimedOut(at time.Time, timeout time.Duration) bool {
	if r.Status != RoundStatusResolving || r.ResolutionRequestedAt == nil {
		return false
	}
	return at.Sub(*r.ResolutionRequestedAt) >= timeout
}

// MarkSettled transitions Resolving -> Settled exactly once.
func (r *Round) MarkSettled(at time.Time) error {
	if r.IsSettled() {
		return ErrRoundAlreadySettled
	}
	if r.Status != RoundStatusResolving {
		return ErrRoundNotResolving
	}
	r.Status = RoundStatusSettled
	r.SettledAt = &at
	return nil
}

// ClaimDeadline returns the end of the direct-owner claim window. The
// deadline itself is within the window (inclusive).
func (r *Round) ClaimDeadline(window time.Duration) (time.Time, error) {
	if r.SettledAt == nil {
		return time.Time{}, ErrRoundNotSettled
	}
	return r.SettledAt.Add(window), nil
}

// CanSweep reports whether the grace period beyond the claim deadline has
// elapsed.
func (r *Round) CanSweep(at time.Time, claimWindow, gracePeriod time.Duration) bool {
	if r.Status != RoundStatusSettled || r.SettledAt == nil {
		return false
	}
	return !at.Before(r.SettledAt.Add(claimWindow).Add(gracePeriod))
}

// MarkSwept transitions Settled -> Swept, the terminal state.
func (r *Round) MarkSwept(at time.Time) error {
	if r.Status == RoundStatusSwept {
		return ErrRoundAlreadySwept
	}
	if r.Status != RoundStatusSettled {
		return ErrRoundNotSettled
	}
	r.Status = RoundStatusSwept
	r.SweptAt = &at
	return nil
}

// Validate performs validation on the round model
func (r *Round) Validate() error {
	if r.MatchCount <= 0 {
		return ErrInvalidMatchCount
	}
	if !r.CutoffAt.After(r.OpensAt) {
		return ErrInvalidCutoff
	}
	return nil
}
