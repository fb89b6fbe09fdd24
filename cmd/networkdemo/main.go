// Command networkdemo wires a complete Network facade from
// cmd/config/default.yaml and exposes it as a cobra CLI, the demo/smoke
// binary analogue of the teacher's cmd/dexserver for this module: load
// config, construct core components, log through logrus, drive the
// facade end-to-end.
package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"liquiditynet/core"
	"liquiditynet/core/vault"
	"liquiditynet/pkg/config"
)

var (
	a      *app
	logger = logrus.New()
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	a, err = bootstrap(cfg, logger)
	if err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}

	if err := rootCmd().Execute(); err != nil {
		logger.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "networkdemo",
		Short: "Exercises the liquidity Network facade end-to-end",
	}
	root.AddCommand(
		depositCmd(),
		withdrawCmd(),
		tradeCmd(),
		flashloanCmd(),
		poolCmd(),
	)
	return root
}

func parseAddressArg(name, s string) (core.Address, error) {
	addr, err := core.ParseAddress(s)
	if err != nil {
		return addr, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

func parseAmountArg(name, s string) (*uint256.Int, error) {
	v, ok := core.ParseUint256(s)
	if !ok {
		return nil, fmt.Errorf("%s: invalid integer %q", name, s)
	}
	return v, nil
}

func parseRateArg(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, s)
	}
	return v, nil
}

func depositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit <bt> <provider> <amount>",
		Short: "Deposit amount of bt on behalf of provider",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			bt, err := parseAddressArg("bt", args[0])
			if err != nil {
				return err
			}
			provider, err := parseAddressArg("provider", args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmountArg("amount", args[2])
			if err != nil {
				return err
			}
			tok, err := a.token(bt)
			if err != nil {
				return err
			}
			tok.Mint(provider, amount)
			if err := a.net.Deposit(provider, bt, amount); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"bt": bt.Hex(), "provider": provider.Hex(), "amount": amount.String()}).Info("deposit complete")
			return nil
		},
	}
	return cmd
}

func withdrawCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "withdraw", Short: "Two-phase withdrawal lifecycle"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init <bt> <provider> <amount>",
			Short: "Lock pool tokens and start the withdrawal clock",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				bt, err := parseAddressArg("bt", args[0])
				if err != nil {
					return err
				}
				provider, err := parseAddressArg("provider", args[1])
				if err != nil {
					return err
				}
				amount, err := parseAmountArg("amount", args[2])
				if err != nil {
					return err
				}
				id, err := a.net.InitWithdrawal(provider, bt, amount)
				if err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{"id": id.String()}).Info("withdrawal initiated")
				return nil
			},
		},
		&cobra.Command{
			Use:   "complete <provider> <id>",
			Short: "Complete a ready withdrawal",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				provider, err := parseAddressArg("provider", args[0])
				if err != nil {
					return err
				}
				id, err := uuid.Parse(args[1])
				if err != nil {
					return fmt.Errorf("id: %w", err)
				}
				if err := a.net.Withdraw(provider, id); err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{"id": id.String()}).Info("withdrawal complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "cancel <provider> <id>",
			Short: "Cancel a pending withdrawal",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				provider, err := parseAddressArg("provider", args[0])
				if err != nil {
					return err
				}
				id, err := uuid.Parse(args[1])
				if err != nil {
					return fmt.Errorf("id: %w", err)
				}
				if err := a.net.CancelWithdrawal(provider, id); err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{"id": id.String()}).Info("withdrawal cancelled")
				return nil
			},
		},
	)
	return cmd
}

func tradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade <trader> <source> <target> <amount-in> <min-out>",
		Short: "Trade source for target, routing through NT if needed",
		Args:  cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			trader, err := parseAddressArg("trader", args[0])
			if err != nil {
				return err
			}
			source, err := parseAddressArg("source", args[1])
			if err != nil {
				return err
			}
			target, err := parseAddressArg("target", args[2])
			if err != nil {
				return err
			}
			amountIn, err := parseAmountArg("amount-in", args[3])
			if err != nil {
				return err
			}
			minOut, err := parseAmountArg("min-out", args[4])
			if err != nil {
				return err
			}
			result, err := a.net.TradeFor(trader, trader, source, target, amountIn, minOut)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"amount_out": result.AmountOut.String(), "fee": result.Fee.String()}).Info("trade complete")
			return nil
		},
	}
	return cmd
}

func flashloanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flashloan <token> <amount>",
		Short: "Draw a flash loan that immediately repays itself plus the fee",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			token, err := parseAddressArg("token", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmountArg("amount", args[1])
			if err != nil {
				return err
			}
			if _, err := a.token(token); err != nil {
				return err
			}
			recipientAddr := core.Address{0xFE}
			recipient := &selfRepayingRecipient{}
			if err := a.net.FlashLoan(recipientAddr, token, amount, recipientAddr, recipient, nil); err != nil {
				return err
			}
			logger.Info("flash loan repaid")
			return nil
		},
	}
	return cmd
}

func poolCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "pool", Short: "Inspect and manage configured pools"}
	cmd.AddCommand(&cobra.Command{
		Use:   "enable-trading <bt> <bnt-rate-num> <bnt-rate-den> <tkn-rate-num> <tkn-rate-den>",
		Short: "Seed virtual rates and enable trading on a pool, required before trade/flashloan",
		Args:  cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			bt, err := parseAddressArg("bt", args[0])
			if err != nil {
				return err
			}
			bntNum, err := parseRateArg("bnt-rate-num", args[1])
			if err != nil {
				return err
			}
			bntDen, err := parseRateArg("bnt-rate-den", args[2])
			if err != nil {
				return err
			}
			tknNum, err := parseRateArg("tkn-rate-num", args[3])
			if err != nil {
				return err
			}
			tknDen, err := parseRateArg("tkn-rate-den", args[4])
			if err != nil {
				return err
			}
			if err := a.net.EnableTrading(a.networkID, bt, core.NewFraction(bntNum, bntDen), core.NewFraction(tknNum, tknDen)); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"bt": bt.Hex()}).Info("trading enabled")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <bt>",
		Short: "Print a pool's current snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			bt, err := parseAddressArg("bt", args[0])
			if err != nil {
				return err
			}
			pc, ok := a.registry.CollectionOf(bt)
			if !ok {
				return fmt.Errorf("pool %s not registered", bt.Hex())
			}
			pool, err := pc.Pool(bt)
			if err != nil {
				return err
			}
			fmt.Printf("bt=%s staked_balance=%s pool_token_supply=%s trading_enabled=%t\n",
				bt.Hex(), pool.StakedBalance.String(), pool.PoolTokenTotalSupply.String(), pool.TradingEnabled)
			return nil
		},
	})
	return cmd
}

// selfRepayingRecipient is the demo binary's own FlashLoanRecipient: it
// repays the principal plus fee straight back into the vault handle, so
// the command completes end-to-end without an external contract to call
// into.
type selfRepayingRecipient struct{}

func (r *selfRepayingRecipient) OnFlashLoan(_, token core.Address, amount, fee *uint256.Int, repay *vault.Vault, _ []byte) error {
	owed := new(uint256.Int).Add(amount, fee)
	return repay.Deposit(token, owed)
}
