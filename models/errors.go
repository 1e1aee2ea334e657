package models

import "errors"

// Validation errors: caller mistakes, rejected synchronously with no state
// change and never retried automatically.
var (
	ErrInvalidRoundID        = errors.New("invalid round ID")
	ErrInvalidMatchCount     = errors.New("invalid match count")
	ErrInvalidMatchIndex     = errors.New("match index out of range")
	ErrInvalidOutcome        = errors.New("invalid outcome value")
	ErrInvalidCutoff         = errors.New("invalid betting cutoff time")
	ErrInvalidOwnerID        = errors.New("invalid owner ID")
	ErrInvalidStakeAmount    = errors.New("invalid stake amount")
	ErrStakeTooSmall         = errors.New("stake amount below minimum")
	ErrStakeTooLarge         = errors.New("stake amount exceeds maximum")
	ErrNoBetLegs             = errors.New("bet has no legs")
	ErrTooManyBetLegs        = errors.New("bet exceeds maximum leg count")
	ErrDuplicateBetLeg       = errors.New("duplicate match index in bet legs")
	ErrLegAmountMismatch     = errors.New("leg amounts do not sum to stake")
	ErrInvalidOddsValue      = errors.New("invalid odds value")
	ErrInvalidAccountKind    = errors.New("invalid account kind")
	ErrInvalidAccountID      = errors.New("invalid account ID")
	ErrInvalidEntryType      = errors.New("invalid ledger entry type")
	ErrInvalidEntryAmount    = errors.New("invalid ledger entry amount")
	ErrInvalidClaimant       = errors.New("invalid claimant")
	ErrNotBetOwner           = errors.New("claimant is not the bet owner")
	ErrPayoutBelowBountyMin  = errors.New("payout below bounty minimum")
)

// Solvency errors: the operation would violate a funding guarantee. All are
// rejected before any partial mutation.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientReserve   = errors.New("insufficient protocol reserve")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for potential payout")
)

// State and lifecycle errors: the entity exists but is in the wrong state for
// the requested transition. Never silently fixed up.
var (
	ErrRoundNotSeeded        = errors.New("round is not seeded")
	ErrRoundAlreadySeeded    = errors.New("round is already seeded")
	ErrRoundNotOpen          = errors.New("round is not open for betting")
	ErrRoundClosed           = errors.New("round is past the betting cutoff")
	ErrRoundNotClosed        = errors.New("round is not closed")
	ErrRoundNotResolving     = errors.New("round is not awaiting resolution")
	ErrRoundAlreadyResolving = errors.New("resolution already requested for round")
	ErrRoundNotSettled       = errors.New("round is not settled")
	ErrRoundAlreadySettled   = errors.New("round is already settled")
	ErrRoundAlreadySwept     = errors.New("round is already swept")
	ErrOddsAlreadyLocked     = errors.New("odds are already locked for match")
	ErrOddsNotLocked         = errors.New("odds are not locked for match")
	ErrMatchAlreadyFinalized = errors.New("match is already finalized")
	ErrMatchNotFinalized     = errors.New("match is not finalized")
	ErrBetNotActive          = errors.New("bet is not active")
	ErrBetAlreadyClaimed     = errors.New("bet is already claimed")
	ErrBetLost               = errors.New("bet did not win")
	ErrBetNotCancellable     = errors.New("bet can no longer be cancelled")
	ErrClaimWindowOpen       = errors.New("owner claim window has not elapsed")
	ErrReservationReleased   = errors.New("parlay reservation already released")
	ErrRevenueDistributed    = errors.New("round revenue already distributed")
)

// External-dependency errors.
var (
	ErrResolutionTimeout     = errors.New("randomness request timed out")
	ErrResolutionNotTimedOut = errors.New("randomness request has not timed out")
	ErrUnknownRequestID      = errors.New("unknown randomness request ID")
)

// Invariant violations indicate a defect in the engine itself, not a caller
// condition. They abort the enclosing operation and must stay distinguishable
// from validation errors in logs.
var (
	ErrInvariantViolation  = errors.New("accounting invariant violated")
	ErrPoolSumMismatch     = errors.New("pool totals do not sum to total pool")
	ErrReservationOverpaid = errors.New("bonus paid exceeds reservation")
	ErrNegativeBalance     = errors.New("balance cannot be negative")
)

var (
	ErrRecordNotFound                  = errors.New("record not found")
	ErrUnauthorized                    = errors.New("unauthorized")
	ErrForbidden                       = errors.New("forbidden")
	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")

	ErrInvalidBetBounds          = errors.New("invalid bet amount limits")
	ErrInvalidSeedAmount         = errors.New("invalid seed amount")
	ErrInvalidVirtualLiquidity   = errors.New("invalid virtual liquidity amount")
	ErrInvalidOddsRange          = errors.New("invalid odds compression range")
	ErrInvalidWinnerShare        = errors.New("invalid winner share percentage")
	ErrInvalidMultiplierTable    = errors.New("invalid parlay multiplier table")
	ErrInvalidImbalanceThreshold = errors.New("invalid imbalance threshold")
	ErrInvalidCancellationFee    = errors.New("invalid cancellation fee percentage")
	ErrInvalidClaimWindow        = errors.New("invalid claim window")
	ErrInvalidBountyFraction     = errors.New("invalid bounty fraction")
	ErrInvalidGracePeriod        = errors.New("invalid grace period")
	ErrInvalidResolutionTimeout  = errors.New("invalid resolution timeout")
	ErrInvalidRoundDuration      = errors.New("invalid round duration")
)

// IsInvariantViolation reports whether err is one of the invariant-class
// errors so telemetry can separate engine defects from caller mistakes.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation) ||
		errors.Is(err, ErrPoolSumMismatch) ||
		errors.Is(err, ErrReservationOverpaid) ||
		errors.Is(err, ErrNegativeBalance)
}
