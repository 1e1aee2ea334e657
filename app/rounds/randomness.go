package rounds

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// RollsCallback receives the rolls answering one randomness request.
type RollsCallback func(requestID uuid.UUID, rolls []uint64)

// RandomnessSource is the asynchronous oracle the resolution path consumes.
// Request returns immediately with a request id; the rolls arrive later via
// the subscribed callback. A request id the consumer does not recognize is
// dropped, never retried.
type RandomnessSource interface {
	Request(ctx context.Context, count int) (uuid.UUID, error)
	Subscribe(cb RollsCallback)
}

// PseudoSource answers randomness requests from the operating system's
// entropy pool after a configurable delivery delay. It stands in for an
// external verifiable-randomness oracle in development and tests.
type PseudoSource struct {
	latency time.Duration
	cb      RollsCallback
}

// NewPseudoSource creates a pseudo randomness source with the given delivery
// latency.
func NewPseudoSource(latency time.Duration) *PseudoSource {
	return &PseudoSource{latency: latency}
}

func (s *PseudoSource) Subscribe(cb RollsCallback) {
	s.cb = cb
}

func (s *PseudoSource) Request(_ context.Context, count int) (uuid.UUID, error) {
	if count <= 0 {
		return uuid.Nil, fmt.Errorf("randomness request for %d rolls", count)
	}
	requestID := uuid.New()
	go func() {
		time.Sleep(s.latency)
		rolls := make([]uint64, count)
		for i := range rolls {
			var buf [8]byte
			if _, err := rand.Read(buf[:]); err != nil {
				return
			}
			rolls[i] = binary.BigEndian.Uint64(buf[:])
		}
		if s.cb != nil {
			s.cb(requestID, rolls)
		}
	}()
	return requestID, nil
}

// NewEntropyNonce draws the server nonce committed to at seed time.
func NewEntropyNonce() ([]byte, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("draw entropy nonce: %w", err)
	}
	return nonce, nil
}

// Commitment binds a round's identity and seed layout to a hidden server
// nonce at seed time. Publishing the hash before any bet is accepted means
// the later reveal can be checked against state that predates every stake.
func Commitment(roundID int64, matchCount int, seedPerMatch decimal.Decimal, nonce []byte) []byte {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(roundID))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(matchCount))
	h.Write(buf[:])
	h.Write([]byte(seedPerMatch.String()))
	h.Write(nonce)
	return h.Sum(nil)
}

// FallbackRolls derives match rolls when the randomness source times out.
// The inputs are the revealed nonce, the published commitment, the instant
// the resolution request expired, and the round's total volume. None of them
// is choosable after the request is made: the nonce and commitment are fixed
// at seed time, the volume at cutoff, and the expiry the moment resolution is
// requested, so the caller's trigger timing never reaches the hash.
func FallbackRolls(nonce, commitHash []byte, at time.Time, totalVolume decimal.Decimal, count int) []uint64 {
	h, _ := blake2b.New256(nil)
	h.Write(nonce)
	h.Write(commitHash)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(at.UnixNano()))
	h.Write(buf[:])
	h.Write([]byte(totalVolume.String()))
	seed := h.Sum(nil)

	rolls := make([]uint64, count)
	for i := range rolls {
		expand, _ := blake2b.New256(nil)
		expand.Write(seed)
		binary.BigEndian.PutUint64(buf[:], uint64(i))
		expand.Write(buf[:])
		digest := expand.Sum(nil)
		rolls[i] = binary.BigEndian.Uint64(digest[:8])
	}
	return rolls
}

// VerifyCommitment checks a revealed nonce against the published hash.
func VerifyCommitment(commitHash []byte, roundID int64, matchCount int, seedPerMatch decimal.Decimal, nonce []byte) bool {
	expected := Commitment(roundID, matchCount, seedPerMatch, nonce)
	if len(commitHash) != len(expected) {
		return false
	}
	for i := range expected {
		if commitHash[i] != expected[i] {
			return false
		}
	}
	return true
}
