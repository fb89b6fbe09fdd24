// Package pendingwithdrawals implements the two-phase withdrawal
// lifecycle of spec §4.7: init_withdrawal locks a provider's pool tokens
// into custody, complete_withdrawal releases them to the Network for
// burning only inside the Ready window, and cancel_withdrawal returns
// them at any non-terminal state. Adapted from the teacher's
// loanpool_management.go ledger-of-requests idiom (a map keyed by a
// generated id, guarded by one mutex), generalized to a time-windowed
// state machine driven by an injected core.Clock.
package pendingwithdrawals

import (
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"liquiditynet/core"
)

// Status is a withdrawal request's lifecycle state (spec §3).
type Status int

const (
	StatusInitiated Status = iota
	StatusReady
	StatusWithdrawn
	StatusExpired
	StatusCancelled
)

// Request is one provider's locked pool-token claim, pending release.
type Request struct {
	ID              uuid.UUID
	Provider        core.Address
	BT              core.Address
	PoolTokenAmount *uint256.Int
	CreatedAt       uint32
	Status          Status
}

// PendingWithdrawals owns every in-flight withdrawal request.
type PendingWithdrawals struct {
	mu sync.Mutex

	access *core.AccessController
	clock  core.Clock

	lockDuration             uint32
	withdrawalWindowDuration uint32

	requests   map[uuid.UUID]*Request
	byProvider map[core.Address]map[uuid.UUID]struct{}
}

// New constructs a PendingWithdrawals with spec-typical defaults: a
// 7-day lock and a 3-day withdrawal window, both admin-adjustable.
func New(access *core.AccessController, clock core.Clock) *PendingWithdrawals {
	return &PendingWithdrawals{
		access:                   access,
		clock:                    clock,
		lockDuration:             7 * 24 * 3600,
		withdrawalWindowDuration: 3 * 24 * 3600,
		requests:                 make(map[uuid.UUID]*Request),
		byProvider:               make(map[core.Address]map[uuid.UUID]struct{}),
	}
}

func (pw *PendingWithdrawals) requireAdmin(caller core.Address) error {
	return pw.access.Require(caller, core.RoleAdmin)
}

// SetLockDuration is an admin-settable knob (spec §4.7).
func (pw *PendingWithdrawals) SetLockDuration(caller core.Address, seconds uint32) error {
	if err := pw.requireAdmin(caller); err != nil {
		return err
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.lockDuration = seconds
	return nil
}

// SetWithdrawalWindowDuration is an admin-settable knob (spec §4.7).
func (pw *PendingWithdrawals) SetWithdrawalWindowDuration(caller core.Address, seconds uint32) error {
	if err := pw.requireAdmin(caller); err != nil {
		return err
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.withdrawalWindowDuration = seconds
	return nil
}

// InitWithdrawal locks amount of bt's pool tokens on behalf of provider,
// starting the lock-duration clock, and returns a fresh request id. The
// caller (Network) is assumed to have already moved the pool tokens into
// its own custody; this component only records the request.
func (pw *PendingWithdrawals) InitWithdrawal(caller, provider, bt core.Address, amount *uint256.Int) (uuid.UUID, error) {
	if err := pw.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return uuid.UUID{}, err
	}
	if amount.IsZero() {
		return uuid.UUID{}, core.ErrZeroValue
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()

	id := uuid.New()
	pw.requests[id] = &Request{
		ID:              id,
		Provider:        provider,
		BT:              bt,
		PoolTokenAmount: new(uint256.Int).Set(amount),
		CreatedAt:       pw.clock.NowUnix(),
		Status:          StatusInitiated,
	}
	if pw.byProvider[provider] == nil {
		pw.byProvider[provider] = make(map[uuid.UUID]struct{})
	}
	pw.byProvider[provider][id] = struct{}{}
	return id, nil
}

// status computes a request's effective status against the current
// clock, without mutating it — Initiated/Ready/Expired are all derived
// from CreatedAt; Withdrawn/Cancelled are sticky terminal states.
func (pw *PendingWithdrawals) status(r *Request) Status {
	if r.Status == StatusWithdrawn || r.Status == StatusCancelled {
		return r.Status
	}
	now := pw.clock.NowUnix()
	readyAt := r.CreatedAt + pw.lockDuration
	expiresAt := readyAt + pw.withdrawalWindowDuration
	switch {
	case now < readyAt:
		return StatusInitiated
	case now < expiresAt:
		return StatusReady
	default:
		return StatusExpired
	}
}

// Status returns id's current effective status.
func (pw *PendingWithdrawals) Status(id uuid.UUID) (Status, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	r, ok := pw.requests[id]
	if !ok {
		return 0, core.ErrDoesNotExist
	}
	return pw.status(r), nil
}

// CompleteWithdrawal releases id's pool-token claim for the Network to
// burn, callable only by provider while the request is Ready; fails
// WithdrawalNotAllowed in every other state (spec §8 scenario 4).
func (pw *PendingWithdrawals) CompleteWithdrawal(provider core.Address, id uuid.UUID) (*Request, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	r, ok := pw.requests[id]
	if !ok || r.Provider != provider {
		return nil, core.ErrDoesNotExist
	}
	if pw.status(r) != StatusReady {
		return nil, core.ErrWithdrawalNotAllowed
	}
	r.Status = StatusWithdrawn
	pw.forget(provider, id)
	return r, nil
}

// CancelWithdrawal returns id's pool tokens to provider in any
// non-terminal state (spec §4.7).
func (pw *PendingWithdrawals) CancelWithdrawal(provider core.Address, id uuid.UUID) (*Request, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	r, ok := pw.requests[id]
	if !ok || r.Provider != provider {
		return nil, core.ErrDoesNotExist
	}
	switch pw.status(r) {
	case StatusWithdrawn, StatusCancelled:
		return nil, core.ErrWithdrawalNotAllowed
	}
	r.Status = StatusCancelled
	pw.forget(provider, id)
	return r, nil
}

func (pw *PendingWithdrawals) forget(provider core.Address, id uuid.UUID) {
	if set, ok := pw.byProvider[provider]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(pw.byProvider, provider)
		}
	}
}

// RequestsByProvider lists every request id still tracked for provider
// (terminal requests are forgotten once resolved).
func (pw *PendingWithdrawals) RequestsByProvider(provider core.Address) []uuid.UUID {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(pw.byProvider[provider]))
	for id := range pw.byProvider[provider] {
		ids = append(ids, id)
	}
	return ids
}
