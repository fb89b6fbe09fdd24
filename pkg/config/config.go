// Package config provides a reusable loader for this node's configuration
// files and environment variables, mirroring the teacher's pkg/config
// loader: a default YAML merged with an optional environment-specific
// override, then environment variables layered on top via viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"liquiditynet/pkg/utils"
)

// Config is the unified bootstrap configuration for a liquiditynet node. It
// mirrors the YAML files under cmd/config.
type Config struct {
	Network struct {
		ID string `mapstructure:"id" json:"id"`
		NT string `mapstructure:"nt" json:"nt"`
	} `mapstructure:"network" json:"network"`

	Settings struct {
		MinLiquidityForTrading string `mapstructure:"min_liquidity_for_trading" json:"min_liquidity_for_trading"`
		AvgRateMaxDeviationPPM uint32 `mapstructure:"avg_rate_max_deviation_ppm" json:"avg_rate_max_deviation_ppm"`
		WithdrawalFeePPM       uint32 `mapstructure:"withdrawal_fee_ppm" json:"withdrawal_fee_ppm"`
		FlashLoanFeePPM        uint32 `mapstructure:"flash_loan_fee_ppm" json:"flash_loan_fee_ppm"`
	} `mapstructure:"settings" json:"settings"`

	Pools []PoolConfig `mapstructure:"pools" json:"pools"`

	PendingWithdrawals struct {
		LockDurationSeconds             uint32 `mapstructure:"lock_duration_seconds" json:"lock_duration_seconds"`
		WithdrawalWindowDurationSeconds uint32 `mapstructure:"withdrawal_window_duration_seconds" json:"withdrawal_window_duration_seconds"`
	} `mapstructure:"pending_withdrawals" json:"pending_withdrawals"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// PoolConfig seeds one whitelisted base token at bootstrap.
type PoolConfig struct {
	BT           string `mapstructure:"bt" json:"bt"`
	FundingLimit string `mapstructure:"funding_limit" json:"funding_limit"`
	InitialRateN uint64 `mapstructure:"initial_rate_n" json:"initial_rate_n"`
	InitialRateD uint64 `mapstructure:"initial_rate_d" json:"initial_rate_d"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads cmd/config/default.yaml and merges env's override file (if
// env is non-empty), then layers in environment-variable overrides. The
// resulting configuration is stored in AppConfig and returned.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}

	applyEnvOverrides(&AppConfig)
	return &AppConfig, nil
}

// applyEnvOverrides layers simple env-var fallbacks on top of the parsed
// YAML for the PPM and duration knobs, for operators who want to tweak a
// single value without touching the config file.
func applyEnvOverrides(cfg *Config) {
	cfg.Settings.AvgRateMaxDeviationPPM = utils.EnvOrDefaultUint32("LIQUIDITYNET_AVG_RATE_MAX_DEVIATION_PPM", cfg.Settings.AvgRateMaxDeviationPPM)
	cfg.Settings.WithdrawalFeePPM = utils.EnvOrDefaultUint32("LIQUIDITYNET_WITHDRAWAL_FEE_PPM", cfg.Settings.WithdrawalFeePPM)
	cfg.Settings.FlashLoanFeePPM = utils.EnvOrDefaultUint32("LIQUIDITYNET_FLASH_LOAN_FEE_PPM", cfg.Settings.FlashLoanFeePPM)
	cfg.PendingWithdrawals.LockDurationSeconds = utils.EnvOrDefaultUint32("LIQUIDITYNET_LOCK_DURATION_SECONDS", cfg.PendingWithdrawals.LockDurationSeconds)
	cfg.PendingWithdrawals.WithdrawalWindowDurationSeconds = utils.EnvOrDefaultUint32("LIQUIDITYNET_WITHDRAWAL_WINDOW_DURATION_SECONDS", cfg.PendingWithdrawals.WithdrawalWindowDurationSeconds)
}

// LoadFromEnv loads configuration using the LIQUIDITYNET_ENV environment
// variable to select the override file.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("LIQUIDITYNET_ENV", ""))
}
