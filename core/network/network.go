package network

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"liquiditynet/core"
	"liquiditynet/core/bignum"
	"liquiditynet/core/masterpool"
	"liquiditynet/core/pendingwithdrawals"
	"liquiditynet/core/poolcollection"
	"liquiditynet/core/settings"
	"liquiditynet/core/upgrader"
	"liquiditynet/core/vault"
)

// Network is the single entry point of spec §4.9: it orchestrates
// PoolCollection, MasterPool, the Vaults, PendingWithdrawals, and the
// Upgrader behind one reentrancy flag, stamps every operation with a
// context id, and emits events in program order after all state
// mutations of that operation have committed.
type Network struct {
	mu        sync.Mutex
	reentrant bool

	id  core.Address // the Network's own collaborator-facing identity
	nt  core.Address // the network token address

	access             *core.AccessController
	settings           *settings.Settings
	masterPool         *masterpool.MasterPool
	pendingWithdrawals *pendingwithdrawals.PendingWithdrawals
	upgrader           *upgrader.Upgrader
	registry           *Registry

	masterVault   *vault.Vault
	externalVault *vault.Vault

	clock  core.Clock
	logger *logrus.Logger
	events core.EventSink

	tokens map[core.Address]core.Token
}

// Config bundles every collaborator Network needs at construction, per
// Design Notes §9's "explicit interface handles injected at construction".
type Config struct {
	ID                 core.Address
	NT                 core.Address
	Access             *core.AccessController
	Settings           *settings.Settings
	MasterPool         *masterpool.MasterPool
	PendingWithdrawals *pendingwithdrawals.PendingWithdrawals
	Upgrader           *upgrader.Upgrader
	Registry           *Registry
	MasterVault        *vault.Vault
	ExternalVault      *vault.Vault
	Clock              core.Clock
	Logger             *logrus.Logger
	Events             core.EventSink
}

// New constructs the facade. Callers are expected to have already
// granted Network's identity (cfg.ID) ROLE_ASSET_MANAGER on both vaults,
// ROLE_NETWORK_TOKEN_MANAGER on MasterPool, ROLE_POOL_COLLECTION_MANAGER
// on every PoolCollection, and ROLE_MIGRATION_MANAGER for the Upgrader
// (spec §5).
func New(cfg Config) *Network {
	return &Network{
		id:                 cfg.ID,
		nt:                 cfg.NT,
		access:             cfg.Access,
		settings:           cfg.Settings,
		masterPool:         cfg.MasterPool,
		pendingWithdrawals: cfg.PendingWithdrawals,
		upgrader:           cfg.Upgrader,
		registry:           cfg.Registry,
		masterVault:        cfg.MasterVault,
		externalVault:      cfg.ExternalVault,
		clock:              cfg.Clock,
		logger:             cfg.Logger,
		events:             cfg.Events,
		tokens:             make(map[core.Address]core.Token),
	}
}

// RegisterToken associates a Token boundary handle with a BT address, so
// Deposit/Trade/FlashLoan can move real funds for it.
func (n *Network) RegisterToken(bt core.Address, tok core.Token) {
	n.tokens[bt] = tok
}

func (n *Network) logEntry(op string) *logrus.Entry {
	if n.logger == nil {
		return logrus.NewEntry(logrus.New())
	}
	return n.logger.WithField("op", op)
}

// enter claims the reentrancy flag or fails ErrReentrant. Every
// externally visible entry point calls this first and exit via defer
// (spec §5, §9).
func (n *Network) enter() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.reentrant {
		return core.ErrReentrant
	}
	n.reentrant = true
	return nil
}

func (n *Network) exit() {
	n.mu.Lock()
	n.reentrant = false
	n.mu.Unlock()
}

// contextID hashes sender, the current clock reading, and the operation's
// parameters into a single digest included on every event the operation
// emits, letting off-chain consumers join effects of one call (spec
// §4.9, §9).
func (n *Network) contextID(sender core.Address, op string, params ...[]byte) core.Hash {
	h := sha256.New()
	h.Write(sender[:])
	h.Write([]byte(op))
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], n.clock.NowUnix())
	h.Write(t[:])
	for _, p := range params {
		h.Write(p)
	}
	var out core.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func (n *Network) emit(ctx core.Hash, name string, fields map[string]any) {
	if n.events == nil {
		return
	}
	n.events.Emit(core.Event{Name: name, ContextID: ctx, Fields: fields})
}

func (n *Network) isNT(addr core.Address) bool { return addr == n.nt }

// --- Admin: pool-collection management (spec §4.9) ---

// AddPoolCollection registers a newly constructed PoolCollection with the
// Network and makes it the latest of its pool type.
func (n *Network) AddPoolCollection(caller core.Address, pc *poolcollection.PoolCollection) error {
	if err := n.access.Require(caller, core.RoleAdmin); err != nil {
		return err
	}
	n.registry.AddCollection(pc)
	n.emit(n.contextID(caller, "add_pool_collection"), "PoolCollectionAdded", map[string]any{"pool_type": pc.PoolType()})
	return nil
}

// RemovePoolCollection deregisters pc. Fails ErrNotEmpty if it still owns
// pools (Open Question 1, spec §9: cross-type replacement is deferred —
// a collection may only be removed once empty, never swapped directly
// for one of a different pool_type).
func (n *Network) RemovePoolCollection(caller core.Address, pc *poolcollection.PoolCollection) error {
	if err := n.access.Require(caller, core.RoleAdmin); err != nil {
		return err
	}
	if err := n.registry.RemoveCollection(pc); err != nil {
		return err
	}
	n.emit(n.contextID(caller, "remove_pool_collection"), "PoolCollectionRemoved", map[string]any{"pool_type": pc.PoolType()})
	return nil
}

// SetLatestPoolCollection forces pc to be the latest collection of its
// pool type, e.g. after deploying a new engine generation.
func (n *Network) SetLatestPoolCollection(caller core.Address, pc *poolcollection.PoolCollection) error {
	if err := n.access.Require(caller, core.RoleAdmin); err != nil {
		return err
	}
	n.registry.ReplaceLatest(pc)
	n.emit(n.contextID(caller, "replace_latest_pool_collection"), "LatestPoolCollectionReplaced", map[string]any{"pool_type": pc.PoolType()})
	return nil
}

// CreatePool creates bt's pool in the latest collection of poolType.
func (n *Network) CreatePool(caller core.Address, poolType uint16, bt core.Address, initialRate core.Fraction) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	pc, ok := n.registry.LatestCollection(poolType)
	if !ok {
		return core.ErrInvalidPoolCollection
	}
	if err := pc.CreatePool(n.id, bt, initialRate); err != nil {
		return err
	}
	n.registry.SetCollectionOf(bt, pc)
	n.emit(n.contextID(caller, "create_pool", bt[:]), "PoolAdded", map[string]any{"bt": bt.Hex(), "pool_type": poolType})
	return nil
}

// EnableTrading seeds bt's virtual rates and enables trading on its
// owning collection (spec §4.5). The facade's only entry point onto
// PoolCollection.EnableTrading.
func (n *Network) EnableTrading(caller, bt core.Address, bntVirtualRate, tknVirtualRate core.Fraction) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	pc, ok := n.registry.CollectionOf(bt)
	if !ok {
		return core.ErrInvalidPool
	}
	if err := pc.EnableTrading(n.id, bt, bntVirtualRate, tknVirtualRate); err != nil {
		return err
	}
	n.emit(n.contextID(caller, "enable_trading", bt[:]), "TradingEnabled", map[string]any{"bt": bt.Hex()})
	return nil
}

// --- Deposits (spec §4.9) ---

// Deposit is DepositFor(caller, caller, bt, amount, nil).
func (n *Network) Deposit(caller, bt core.Address, amount *uint256.Int) error {
	return n.DepositFor(caller, caller, bt, amount, nil)
}

// DepositFor deposits amount of bt on behalf of provider. value is only
// consulted when bt is the native-token sentinel, whose transfers are
// value-carrying rather than TransferFrom (spec §6); it must equal
// amount or DepositFor fails EthAmountMismatch.
func (n *Network) DepositFor(caller, provider, bt core.Address, amount *uint256.Int, value *uint256.Int) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()
	return n.depositLocked(caller, provider, bt, amount, value)
}

func (n *Network) depositLocked(caller, provider, bt core.Address, amount, value *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroValue
	}
	ctx := n.contextID(caller, "deposit", provider[:], bt[:])
	n.logEntry("deposit").WithFields(logrus.Fields{
		"context_id": ctx.Hex(), "provider": provider.Hex(), "bt": bt.Hex(), "amount": amount.String(),
	}).Debug("deposit")

	if n.isNT(bt) {
		ptAmount, err := n.masterPool.Deposit(n.id, provider, amount)
		if err != nil {
			return err
		}
		n.emit(ctx, "NetworkTokenDeposited", map[string]any{"provider": provider.Hex(), "amount": amount.String(), "pool_token_amount": ptAmount.String()})
		return nil
	}

	if err := n.pullFunds(bt, provider, amount, value); err != nil {
		return err
	}
	if err := n.masterVault.Deposit(bt, amount); err != nil {
		return err
	}

	pc, ok := n.registry.CollectionOf(bt)
	if !ok {
		return core.ErrInvalidPool
	}
	result, err := pc.Deposit(n.id, provider, bt, amount)
	if err != nil {
		return err
	}
	n.emit(ctx, "BaseTokenDeposited", map[string]any{"provider": provider.Hex(), "bt": bt.Hex(), "amount": amount.String(), "pool_token_amount": result.PoolTokenAmount.String()})
	n.emit(ctx, "TotalLiquidityUpdated", map[string]any{"bt": bt.Hex()})
	if result.ToppedUp {
		n.emit(ctx, "TradingLiquidityUpdated", map[string]any{"bt": bt.Hex(), "nt_requested": result.NTRequested.String()})
	}
	return nil
}

// pullFunds moves amount of token from provider into the Network's
// custody. The native-token sentinel arrives via a value-carrying call
// (represented here by the caller-supplied value, checked for an exact
// match) instead of TransferFrom (spec §6).
func (n *Network) pullFunds(token, provider core.Address, amount, value *uint256.Int) error {
	if token.IsNative() {
		if value == nil || value.Cmp(amount) != 0 {
			return core.ErrEthAmountMismatch
		}
		return nil
	}
	tok, ok := n.tokens[token]
	if !ok {
		return core.ErrInvalidToken
	}
	return tok.TransferFrom(provider, n.id, amount)
}

// DepositPermitted consumes a permit signature to approve the transfer
// in the same operation, then deposits exactly as Deposit. Disallowed
// for the native token and NT (spec §6).
func (n *Network) DepositPermitted(caller, bt core.Address, amount *uint256.Int, deadline uint32, sig core.Signature) error {
	return n.DepositForPermitted(caller, caller, bt, amount, deadline, sig)
}

// DepositForPermitted is DepositPermitted on behalf of provider.
func (n *Network) DepositForPermitted(caller, provider, bt core.Address, amount *uint256.Int, deadline uint32, sig core.Signature) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	if bt.IsNative() || n.isNT(bt) {
		return core.ErrPermitUnsupported
	}
	if n.clock.NowUnix() > deadline {
		return core.ErrDeadlineExpired
	}
	tok, ok := n.tokens[bt]
	if !ok {
		return core.ErrInvalidToken
	}
	permittable, ok := tok.(core.Permittable)
	if !ok {
		return core.ErrPermitUnsupported
	}
	if err := permittable.Permit(provider, n.id, amount, deadline, sig); err != nil {
		return err
	}
	return n.depositLocked(caller, provider, bt, amount, nil)
}

// --- Two-phase withdrawal (spec §4.7, §4.9) ---

// InitWithdrawal locks amount of bt's pool tokens into the Network's
// custody on behalf of provider and starts the lock-duration clock.
func (n *Network) InitWithdrawal(caller, bt core.Address, amount *uint256.Int) (uuid.UUID, error) {
	if err := n.enter(); err != nil {
		return uuid.UUID{}, err
	}
	defer n.exit()

	tok, err := n.poolTokenFor(bt)
	if err != nil {
		return uuid.UUID{}, err
	}
	if err := tok.Transfer(caller, n.id, amount); err != nil {
		return uuid.UUID{}, err
	}
	id, err := n.pendingWithdrawals.InitWithdrawal(n.id, caller, bt, amount)
	if err != nil {
		// refund on failure to keep the operation all-or-nothing.
		_ = tok.Transfer(n.id, caller, amount)
		return uuid.UUID{}, err
	}
	return id, nil
}

// CancelWithdrawal returns id's locked pool tokens to provider in any
// non-terminal state (spec §4.7).
func (n *Network) CancelWithdrawal(caller core.Address, id uuid.UUID) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	req, err := n.pendingWithdrawals.CancelWithdrawal(caller, id)
	if err != nil {
		return err
	}
	tok, err := n.poolTokenFor(req.BT)
	if err != nil {
		return err
	}
	return tok.Transfer(n.id, req.Provider, req.PoolTokenAmount)
}

// poolTokenFor returns the pool-token handle for bt, which is the NT
// pool token when bt is the network token itself.
func (n *Network) poolTokenFor(bt core.Address) (poolTokenHandle, error) {
	if n.isNT(bt) {
		return n.masterPool.PoolToken(), nil
	}
	pc, ok := n.registry.CollectionOf(bt)
	if !ok {
		return nil, core.ErrInvalidPool
	}
	return pc.PoolToken(bt)
}

// poolTokenHandle is the slice of pooltoken.PoolToken the Network facade
// needs for withdrawal custody, satisfied by *pooltoken.PoolToken.
type poolTokenHandle interface {
	Transfer(from, to core.Address, amount *uint256.Int) error
}

// Withdraw completes a Ready two-phase withdrawal request, splitting the
// payout between the vault, the external protection vault, and NT
// compensation as the solver directs (spec §4.1, §4.5, §4.7).
func (n *Network) Withdraw(caller core.Address, id uuid.UUID) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	req, err := n.pendingWithdrawals.CompleteWithdrawal(caller, id)
	if err != nil {
		return err
	}
	ctx := n.contextID(caller, "withdraw", req.Provider[:], req.BT[:])
	n.logEntry("withdraw").WithFields(logrus.Fields{
		"context_id": ctx.Hex(), "provider": req.Provider.Hex(), "bt": req.BT.Hex(), "pool_token_amount": req.PoolTokenAmount.String(),
	}).Debug("withdraw")

	if n.isNT(req.BT) {
		amount, err := n.masterPool.WithdrawTo(n.id, n.id, req.Provider, req.PoolTokenAmount)
		if err != nil {
			return err
		}
		n.emit(ctx, "NetworkTokenWithdrawn", map[string]any{"provider": req.Provider.Hex(), "amount": amount.String()})
		return nil
	}

	pc, ok := n.registry.CollectionOf(req.BT)
	if !ok {
		return core.ErrInvalidPool
	}
	payout, err := pc.Withdraw(n.id, n.id, req.BT, req.PoolTokenAmount)
	if err != nil {
		return err
	}

	tok, ok := n.tokens[req.BT]
	if !ok {
		return core.ErrInvalidToken
	}
	if !payout.BTFromVault.IsZero() {
		if err := n.masterVault.Withdraw(n.id, tok, req.BT, req.Provider, payout.BTFromVault); err != nil {
			return err
		}
	}
	if !payout.BTFromExternal.IsZero() {
		if err := n.externalVault.Withdraw(n.id, tok, req.BT, req.Provider, payout.BTFromExternal); err != nil {
			return err
		}
	}
	if !payout.NTToMintForLP.IsZero() {
		if err := n.masterPool.CompensateWithdrawal(n.id, req.Provider, payout.NTToMintForLP); err != nil {
			return err
		}
	}
	if !payout.NTToBurnFromPool.IsZero() {
		if err := n.masterPool.RenounceLiquidity(n.id, req.BT, payout.NTToBurnFromPool); err != nil {
			return err
		}
	}

	n.emit(ctx, "BaseTokenWithdrawn", map[string]any{
		"provider":        req.Provider.Hex(),
		"bt":              req.BT.Hex(),
		"bt_from_vault":   payout.BTFromVault.String(),
		"bt_from_ext":     payout.BTFromExternal.String(),
		"nt_compensation": payout.NTToMintForLP.String(),
	})
	if !payout.BTFee.IsZero() {
		n.emit(ctx, "FeesCollectedWithdrawal", map[string]any{"bt": req.BT.Hex(), "amount": payout.BTFee.String()})
	}
	n.emit(ctx, "TotalLiquidityUpdated", map[string]any{"bt": req.BT.Hex()})
	n.emit(ctx, "TradingLiquidityUpdated", map[string]any{"bt": req.BT.Hex()})
	return nil
}

// --- Trade (spec §4.1, §4.5, §4.9) ---

// TradeResult is the outcome of a (possibly two-hop) trade.
type TradeResult struct {
	AmountOut *uint256.Int
	Fee       *uint256.Int
}

// Trade executes a swap through source's pool, target's pool, or both in
// sequence (BT→BT via NT) depending on which side is the network token
// (spec §4.5's data-flow diagram).
func (n *Network) Trade(caller, source, target core.Address, amountIn, minOut *uint256.Int) (*TradeResult, error) {
	return n.TradeFor(caller, caller, source, target, amountIn, minOut)
}

// TradeFor executes Trade with trader as the counterparty providing
// amountIn and receiving amountOut.
func (n *Network) TradeFor(caller, trader, source, target core.Address, amountIn, minOut *uint256.Int) (*TradeResult, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.exit()
	return n.tradeLocked(caller, trader, source, target, amountIn, minOut)
}

func (n *Network) tradeLocked(caller, trader, source, target core.Address, amountIn, minOut *uint256.Int) (*TradeResult, error) {
	if source == target {
		return nil, core.ErrInvalidType
	}
	if amountIn.IsZero() {
		return nil, core.ErrZeroValue
	}
	ctx := n.contextID(caller, "trade", trader[:], source[:], target[:])
	n.logEntry("trade").WithFields(logrus.Fields{
		"context_id": ctx.Hex(), "trader": trader.Hex(), "source": source.Hex(), "target": target.Hex(), "amount_in": amountIn.String(),
	}).Debug("trade")

	if err := n.pullFunds(source, trader, amountIn, nil); err != nil {
		return nil, err
	}
	if err := n.masterVault.Deposit(source, amountIn); err != nil {
		return nil, err
	}

	var amountOut, fee *uint256.Int
	switch {
	case n.isNT(source) || n.isNT(target):
		bt := source
		if n.isNT(source) {
			bt = target
		}
		pc, ok := n.registry.CollectionOf(bt)
		if !ok {
			return nil, core.ErrInvalidPool
		}
		res, err := pc.Trade(n.id, source, target, bt, amountIn, minOut)
		if err != nil {
			return nil, err
		}
		amountOut, fee = res.AmountOut, res.Fee
	default:
		// BT→BT via NT: two sequential hops through the source and
		// target pools, with zero minOut on the intermediate leg (spec
		// §2's data-flow diagram).
		srcPC, ok := n.registry.CollectionOf(source)
		if !ok {
			return nil, core.ErrInvalidPool
		}
		hop1, err := srcPC.Trade(n.id, source, n.nt, source, amountIn, uint256.NewInt(0))
		if err != nil {
			return nil, err
		}
		dstPC, ok := n.registry.CollectionOf(target)
		if !ok {
			return nil, core.ErrInvalidPool
		}
		hop2, err := dstPC.Trade(n.id, n.nt, target, target, hop1.AmountOut, minOut)
		if err != nil {
			return nil, err
		}
		amountOut = hop2.AmountOut
		fee = new(uint256.Int).Add(hop1.Fee, hop2.Fee)
	}

	tok, ok := n.tokens[target]
	if !ok {
		return nil, core.ErrInvalidToken
	}
	if err := n.masterVault.Withdraw(n.id, tok, target, trader, amountOut); err != nil {
		return nil, err
	}

	n.emit(ctx, "TokensTraded", map[string]any{
		"trader":     trader.Hex(),
		"source":     source.Hex(),
		"target":     target.Hex(),
		"amount_in":  amountIn.String(),
		"amount_out": amountOut.String(),
	})
	n.emit(ctx, "FeesCollectedTrading", map[string]any{"amount": fee.String()})
	n.emit(ctx, "TradingLiquidityUpdated", map[string]any{"source": source.Hex(), "target": target.Hex()})
	return &TradeResult{AmountOut: amountOut, Fee: fee}, nil
}

// TradePermitted consumes a permit signature before trading; disallowed
// for the native token and NT.
func (n *Network) TradePermitted(caller, source, target core.Address, amountIn, minOut *uint256.Int, deadline uint32, sig core.Signature) (*TradeResult, error) {
	if err := n.enter(); err != nil {
		return nil, err
	}
	defer n.exit()

	if source.IsNative() || n.isNT(source) {
		return nil, core.ErrPermitUnsupported
	}
	if n.clock.NowUnix() > deadline {
		return nil, core.ErrDeadlineExpired
	}
	tok, ok := n.tokens[source]
	if !ok {
		return nil, core.ErrInvalidToken
	}
	permittable, ok := tok.(core.Permittable)
	if !ok {
		return nil, core.ErrPermitUnsupported
	}
	if err := permittable.Permit(caller, n.id, amountIn, deadline, sig); err != nil {
		return nil, err
	}
	return n.tradeLocked(caller, caller, source, target, amountIn, minOut)
}

// --- Flash loan (spec §4.9's protocol) ---

// FlashLoanRecipient is invoked mid-flash-loan with a handle onto the
// vault the loan was drawn from, which it must repay (amount+fee) via
// Deposit before returning.
type FlashLoanRecipient interface {
	OnFlashLoan(sender, token core.Address, amount, fee *uint256.Int, repay *vault.Vault, data []byte) error
}

// FlashLoan implements the six-step protocol of spec §4.9: snapshot,
// fee computation, transfer out, callback, return verification, fee
// credit. Reentry of any Network mutation during the callback fails
// ErrReentrant (spec §4.9 scenario 6).
func (n *Network) FlashLoan(caller, token core.Address, amount *uint256.Int, recipientAddr core.Address, recipient FlashLoanRecipient, data []byte) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.exit()

	if amount.IsZero() {
		return core.ErrZeroValue
	}
	n.logEntry("flash_loan").WithFields(logrus.Fields{
		"token": token.Hex(), "amount": amount.String(), "recipient": recipientAddr.Hex(),
	}).Debug("flash_loan")

	v0 := n.masterVault.BalanceOf(token)
	fee, err := bignum.MulDivFloor(amount, uint256.NewInt(uint64(n.settings.FlashLoanFeePPM())), uint256.NewInt(bignum.PPM))
	if err != nil {
		return err
	}

	tok, ok := n.tokens[token]
	if !ok {
		return core.ErrInvalidToken
	}
	if err := n.masterVault.Withdraw(n.id, tok, token, recipientAddr, amount); err != nil {
		return err
	}

	if err := recipient.OnFlashLoan(caller, token, amount, fee, n.masterVault, data); err != nil {
		return err
	}

	want := new(uint256.Int).Add(v0, fee)
	if n.masterVault.BalanceOf(token).Cmp(want) < 0 {
		return core.ErrInsufficientFlashReturn
	}

	if n.isNT(token) {
		if err := n.masterPool.CreditTradingFee(n.id, fee); err != nil {
			return err
		}
	} else {
		pc, ok := n.registry.CollectionOf(token)
		if !ok {
			return core.ErrInvalidPool
		}
		if err := pc.CreditFlashLoanFee(n.id, token, fee); err != nil {
			return err
		}
	}

	ctx := n.contextID(caller, "flash_loan", token[:])
	n.emit(ctx, "FlashLoanCompleted", map[string]any{"token": token.Hex(), "amount": amount.String(), "fee": fee.String()})
	n.emit(ctx, "FeesCollectedFlashLoan", map[string]any{"token": token.Hex(), "amount": fee.String()})
	return nil
}

// --- Pool-collection upgrade (spec §4.8, §4.9) ---

// UpgradePools upgrades every bt in batch to the latest collection of
// its pool type, silently skipping invalid or already-upgraded pools
// (spec §4.8, §7 — the one explicitly "soft" batch operation), and keeps
// the registry's BT→collection mapping in sync for each one that
// succeeds.
func (n *Network) UpgradePools(caller core.Address, batch []core.Address) []core.Address {
	if err := n.enter(); err != nil {
		return nil
	}
	defer n.exit()

	upgraded := make([]core.Address, 0, len(batch))
	for _, bt := range batch {
		dest, err := n.upgrader.UpgradePool(caller, bt)
		if err != nil {
			continue
		}
		n.registry.SetCollectionOf(bt, dest)
		upgraded = append(upgraded, bt)
	}
	return upgraded
}
