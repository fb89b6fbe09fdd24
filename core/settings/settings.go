// Package settings implements NetworkSettings (spec §4.4): a role-gated
// administrative key-value store for the knobs every other component
// reads: whitelist, funding limits, withdrawal/flash-loan fees, the
// average-rate deviation bound, and the min-liquidity-for-trading floor.
package settings

import (
	"sync"

	"github.com/holiman/uint256"
	"liquiditynet/core"
)

const PPM = 1_000_000

// Settings holds every option of the table in spec §4.4.
type Settings struct {
	mu sync.RWMutex

	access *core.AccessController

	whitelist              map[core.Address]bool
	fundingLimit           map[core.Address]*uint256.Int
	minLiquidityForTrading *uint256.Int
	avgRateMaxDeviationPPM uint32
	withdrawalFeePPM       uint32
	flashLoanFeePPM        uint32
}

func New(access *core.AccessController) *Settings {
	return &Settings{
		access:                 access,
		whitelist:              make(map[core.Address]bool),
		fundingLimit:           make(map[core.Address]*uint256.Int),
		minLiquidityForTrading: uint256.NewInt(0),
	}
}

func (s *Settings) requireAdmin(caller core.Address) error {
	return s.access.Require(caller, core.RoleAdmin)
}

// IsWhitelisted reports whether bt may have pools created, deposited
// into, or traded against.
func (s *Settings) IsWhitelisted(bt core.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelist[bt]
}

// SetWhitelisted adds or removes bt from the whitelist.
func (s *Settings) SetWhitelisted(caller core.Address, bt core.Address, whitelisted bool) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whitelist[bt] = whitelisted
	return nil
}

// FundingLimit returns the max NT ever mintable into bt's trading
// liquidity; zero if unset.
func (s *Settings) FundingLimit(bt core.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.fundingLimit[bt]; ok {
		return new(uint256.Int).Set(v)
	}
	return uint256.NewInt(0)
}

// SetFundingLimit sets bt's funding limit (alias: pool_minting_limit).
func (s *Settings) SetFundingLimit(caller core.Address, bt core.Address, limit *uint256.Int) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fundingLimit[bt] = new(uint256.Int).Set(limit)
	return nil
}

func (s *Settings) MinLiquidityForTrading() *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(uint256.Int).Set(s.minLiquidityForTrading)
}

func (s *Settings) SetMinLiquidityForTrading(caller core.Address, v *uint256.Int) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minLiquidityForTrading = new(uint256.Int).Set(v)
	return nil
}

func (s *Settings) AvgRateMaxDeviationPPM() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avgRateMaxDeviationPPM
}

func (s *Settings) SetAvgRateMaxDeviationPPM(caller core.Address, ppm uint32) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if ppm > PPM {
		return core.ErrInvalidType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avgRateMaxDeviationPPM = ppm
	return nil
}

func (s *Settings) WithdrawalFeePPM() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawalFeePPM
}

func (s *Settings) SetWithdrawalFeePPM(caller core.Address, ppm uint32) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if ppm > PPM {
		return core.ErrInvalidType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawalFeePPM = ppm
	return nil
}

func (s *Settings) FlashLoanFeePPM() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flashLoanFeePPM
}

func (s *Settings) SetFlashLoanFeePPM(caller core.Address, ppm uint32) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if ppm > PPM {
		return core.ErrInvalidType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashLoanFeePPM = ppm
	return nil
}
