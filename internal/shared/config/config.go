package config

import (
	"fmt"
	"os"

	"NestVault/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Required keys are validated in Load; a service with a half-missing chain
// configuration must never come up, because the operator co-signs real
// transactions with its own funds as fee payer.
type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string

	RPCEndpoint string

	OperatorPubkey   string
	TreasuryWallet   string
	SettlementMint   string
	LendingProgramID string
	LendingGroup     string
	FeeStateAccount  string

	SignerURL   string
	SignerKeyID string

	FeeRatePPM int64

	AuthVerifyURL string

	// Optional integrations. Empty means disabled.
	KafkaBrokers      []string
	RedisURL          string
	TelegramBotToken  string
	TelegramOpsChatID int64
}

// bindings maps viper keys to the environment variables that feed them.
var bindings = map[string]string{
	"app.env":            "APP_ENV",
	"http.addr":          "HTTP_ADDR",
	"database.url":       "DATABASE_URL",
	"rpc.endpoint":       "RPC_ENDPOINT",
	"operator.pubkey":    "OPERATOR_PUBKEY",
	"treasury.wallet":    "TREASURY_WALLET",
	"settlement.mint":    "SETTLEMENT_MINT",
	"lending.program":    "LENDING_PROGRAM_ID",
	"lending.group":      "LENDING_GROUP",
	"lending.feestate":   "LENDING_FEE_STATE",
	"signer.url":         "SIGNER_URL",
	"signer.keyid":       "SIGNER_KEY_ID",
	"fee.rate.ppm":       "FEE_RATE_PPM",
	"auth.verify.url":    "AUTH_VERIFY_URL",
	"kafka.brokers":      "KAFKA_BROKERS",
	"redis.url":          "REDIS_URL",
	"telegram.bot.token": "TELEGRAM_BOT_TOKEN",
	"telegram.ops.chat":  "TELEGRAM_OPS_CHAT_ID",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env into the process environment first. A missing file is fine
	// in prod, where we rely on OS-set env vars.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	viper.SetDefault("app.env", "dev")
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("fee.rate.ppm", 0)

	cfg := Config{
		AppEnv:            viper.GetString("app.env"),
		HTTPAddr:          viper.GetString("http.addr"),
		DatabaseURL:       viper.GetString("database.url"),
		RPCEndpoint:       viper.GetString("rpc.endpoint"),
		OperatorPubkey:    viper.GetString("operator.pubkey"),
		TreasuryWallet:    viper.GetString("treasury.wallet"),
		SettlementMint:    viper.GetString("settlement.mint"),
		LendingProgramID:  viper.GetString("lending.program"),
		LendingGroup:      viper.GetString("lending.group"),
		FeeStateAccount:   viper.GetString("lending.feestate"),
		SignerURL:         viper.GetString("signer.url"),
		SignerKeyID:       viper.GetString("signer.keyid"),
		FeeRatePPM:        viper.GetInt64("fee.rate.ppm"),
		AuthVerifyURL:     viper.GetString("auth.verify.url"),
		KafkaBrokers:      viper.GetStringSlice("kafka.brokers"),
		RedisURL:          viper.GetString("redis.url"),
		TelegramBotToken:  viper.GetString("telegram.bot.token"),
		TelegramOpsChatID: viper.GetInt64("telegram.ops.chat"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"RPC_ENDPOINT", cfg.RPCEndpoint},
		{"OPERATOR_PUBKEY", cfg.OperatorPubkey},
		{"TREASURY_WALLET", cfg.TreasuryWallet},
		{"SETTLEMENT_MINT", cfg.SettlementMint},
		{"LENDING_PROGRAM_ID", cfg.LendingProgramID},
		{"LENDING_GROUP", cfg.LendingGroup},
		{"LENDING_FEE_STATE", cfg.FeeStateAccount},
		{"SIGNER_URL", cfg.SignerURL},
		{"SIGNER_KEY_ID", cfg.SignerKeyID},
		{"AUTH_VERIFY_URL", cfg.AuthVerifyURL},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%w: %s is not set in environment or .env file", domain.ErrMissingConfiguration, r.name)
		}
	}

	if cfg.FeeRatePPM < 0 || cfg.FeeRatePPM >= 1_000_000 {
		return nil, fmt.Errorf("%w: FEE_RATE_PPM must be in [0, 1000000)", domain.ErrMissingConfiguration)
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramOpsChatID == 0 {
		return nil, fmt.Errorf("%w: TELEGRAM_OPS_CHAT_ID must be set when TELEGRAM_BOT_TOKEN is", domain.ErrMissingConfiguration)
	}

	return &cfg, nil
}
