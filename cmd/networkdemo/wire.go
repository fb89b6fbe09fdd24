package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"liquiditynet/core"
	"liquiditynet/core/masterpool"
	"liquiditynet/core/network"
	"liquiditynet/core/pendingwithdrawals"
	"liquiditynet/core/poolcollection"
	"liquiditynet/core/settings"
	"liquiditynet/core/upgrader"
	"liquiditynet/core/vault"
	"liquiditynet/pkg/config"
)

const poolTypeStandard = uint16(1)

// app bundles the wired facade and the token doubles this demo binary
// registers for each configured pool, so command handlers never touch
// construction details.
type app struct {
	net       *network.Network
	access    *core.AccessController
	registry  *network.Registry
	tokens    map[core.Address]*demoToken
	networkID core.Address
	logger    *logrus.Logger
}

// bootstrap assembles a Network: construct every collaborator, wire them
// into network.New, then grant the Network's own identity the roles
// listed in network.New's doc comment, the same assembly order
// core/network/network_test.go's fixture uses.
func bootstrap(cfg *config.Config, logger *logrus.Logger) (*app, error) {
	networkID, err := core.ParseAddress(cfg.Network.ID)
	if err != nil {
		return nil, fmt.Errorf("network.id: %w", err)
	}
	nt, err := core.ParseAddress(cfg.Network.NT)
	if err != nil {
		return nil, fmt.Errorf("network.nt: %w", err)
	}

	access := core.NewAccessController()
	access.Grant(networkID, core.RoleAdmin)

	s := settings.New(access)
	if cfg.Settings.MinLiquidityForTrading != "" {
		v, ok := core.ParseUint256(cfg.Settings.MinLiquidityForTrading)
		if !ok {
			return nil, fmt.Errorf("settings.min_liquidity_for_trading: invalid integer %q", cfg.Settings.MinLiquidityForTrading)
		}
		if err := s.SetMinLiquidityForTrading(networkID, v); err != nil {
			return nil, err
		}
	}
	if err := s.SetAvgRateMaxDeviationPPM(networkID, cfg.Settings.AvgRateMaxDeviationPPM); err != nil {
		return nil, err
	}
	if err := s.SetWithdrawalFeePPM(networkID, cfg.Settings.WithdrawalFeePPM); err != nil {
		return nil, err
	}
	if err := s.SetFlashLoanFeePPM(networkID, cfg.Settings.FlashLoanFeePPM); err != nil {
		return nil, err
	}

	clock := core.NewClock()
	ntToken := newDemoNT()
	mp := masterpool.New(core.Address{0xB0}, access, s, ntToken, logger)

	masterVault := vault.New(vault.KindMaster, access)
	externalVault := vault.New(vault.KindExternalProtection, access)

	pc := poolcollection.New(core.Address{0xC0}, poolTypeStandard, nt, access, s, masterVault, externalVault, mp, clock, logger)
	access.Grant(pc.Identity(), core.RoleNetworkTokenManager)

	registry := network.NewRegistry()
	registry.AddCollection(pc)

	pw := pendingwithdrawals.New(access, clock)
	if cfg.PendingWithdrawals.LockDurationSeconds != 0 {
		if err := pw.SetLockDuration(networkID, cfg.PendingWithdrawals.LockDurationSeconds); err != nil {
			return nil, err
		}
	}
	if cfg.PendingWithdrawals.WithdrawalWindowDurationSeconds != 0 {
		if err := pw.SetWithdrawalWindowDuration(networkID, cfg.PendingWithdrawals.WithdrawalWindowDurationSeconds); err != nil {
			return nil, err
		}
	}

	up := upgrader.New(access, registry)
	events := core.NewEventRecorder()

	net := network.New(network.Config{
		ID:                 networkID,
		NT:                 nt,
		Access:             access,
		Settings:           s,
		MasterPool:         mp,
		PendingWithdrawals: pw,
		Upgrader:           up,
		Registry:           registry,
		MasterVault:        masterVault,
		ExternalVault:      externalVault,
		Clock:              clock,
		Logger:             logger,
		Events:             events,
	})

	access.Grant(networkID, core.RoleAssetManager)
	access.Grant(networkID, core.RoleNetworkTokenManager)
	access.Grant(networkID, core.RolePoolCollectionManager)
	access.Grant(networkID, core.RoleMigrationManager)

	tokens := make(map[core.Address]*demoToken)
	for _, p := range cfg.Pools {
		bt, err := core.ParseAddress(p.BT)
		if err != nil {
			return nil, fmt.Errorf("pools[].bt: %w", err)
		}
		limit, ok := core.ParseUint256(p.FundingLimit)
		if !ok {
			return nil, fmt.Errorf("pools[].funding_limit: invalid integer %q", p.FundingLimit)
		}
		if err := s.SetWhitelisted(networkID, bt, true); err != nil {
			return nil, err
		}
		if err := s.SetFundingLimit(networkID, bt, limit); err != nil {
			return nil, err
		}

		tok := newDemoToken()
		tokens[bt] = tok
		net.RegisterToken(bt, tok)

		rate := core.NewFraction(p.InitialRateN, p.InitialRateD)
		if err := net.CreatePool(networkID, poolTypeStandard, bt, rate); err != nil {
			return nil, fmt.Errorf("create pool %s: %w", p.BT, err)
		}
	}

	return &app{net: net, access: access, registry: registry, tokens: tokens, networkID: networkID, logger: logger}, nil
}

func (a *app) token(bt core.Address) (*demoToken, error) {
	tok, ok := a.tokens[bt]
	if !ok {
		return nil, fmt.Errorf("pool %s is not configured", bt.Hex())
	}
	return tok, nil
}
