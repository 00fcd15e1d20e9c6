package main

import (
	"NestVault/internal/adapters/cache"
	"NestVault/internal/adapters/eventbus"
	"NestVault/internal/adapters/identity"
	"NestVault/internal/adapters/kafkabus"
	"NestVault/internal/adapters/postgres"
	"NestVault/internal/adapters/signer"
	"NestVault/internal/adapters/solanarpc"
	"NestVault/internal/adapters/telegram"
	"NestVault/internal/core/lending"
	"NestVault/internal/core/ports"
	"NestVault/internal/core/savings"
	"NestVault/internal/handlers/httpapi"
	"NestVault/internal/shared/config"
	"NestVault/internal/shared/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("http_addr", cfg.HTTPAddr).
		Int64("fee_rate_ppm", cfg.FeeRatePPM).
		Msg("Configuration loaded")

	// 3. Parse chain addresses. These come from config as base58; a typo
	// here must kill the process, not a request.
	operator := mustKey(cfg.OperatorPubkey, "OPERATOR_PUBKEY", baseLogger)
	treasury := mustKey(cfg.TreasuryWallet, "TREASURY_WALLET", baseLogger)
	mint := mustKey(cfg.SettlementMint, "SETTLEMENT_MINT", baseLogger)
	lendingProgram := mustKey(cfg.LendingProgramID, "LENDING_PROGRAM_ID", baseLogger)
	lendingGroup := mustKey(cfg.LendingGroup, "LENDING_GROUP", baseLogger)
	feeState := mustKey(cfg.FeeStateAccount, "LENDING_FEE_STATE", baseLogger)

	// 4. Initialize Database
	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 5. Initialize Repositories
	ledgerRepo := postgres.NewLedgerRepository(db, &baseLogger)
	accountRepo := postgres.NewSavingsAccountRepository(db, &baseLogger)
	positionRepo := postgres.NewPositionRepository(db, &baseLogger)

	// 6. Initialize Chain Clients
	chain := solanarpc.NewClient(cfg.RPCEndpoint, &baseLogger)
	remoteSigner := signer.NewHTTPSigner(cfg.SignerURL, &baseLogger)
	resolver := identity.NewHTTPResolver(cfg.AuthVerifyURL, &baseLogger)

	// 7. Initialize the descriptor cache: Redis when configured, otherwise
	// a per-instance memory cache.
	var descriptorCache ports.DescriptorCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, &baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		descriptorCache = redisCache
	} else {
		descriptorCache = cache.NewMemory()
		baseLogger.Info().Msg("REDIS_URL not set, using in-memory descriptor cache")
	}

	// 8. Optional integrations: event publishing and ops alerts. Without
	// Kafka, events fan out on an in-process bus instead.
	var publisher ports.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafkabus.NewPublisher(cfg.KafkaBrokers, &baseLogger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		bus := eventbus.NewInMemoryBus(&baseLogger)
		bus.Subscribe(func(_ context.Context, event ports.EntryRecordedEvent) {
			baseLogger.Info().
				Str("wallet", event.Wallet).
				Str("direction", event.Direction).
				Str("amount", event.AmountUI).
				Str("signature", event.Signature).
				Msg("Ledger entry recorded")
		})
		publisher = bus
	}

	var notifier ports.OpsNotifier
	if cfg.TelegramBotToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		notifier = telegram.NewNotifier(api, cfg.TelegramOpsChatID, &baseLogger)
	}

	// 9. Wire the core pipeline
	bankResolver := lending.NewDescriptorResolver(chain, descriptorCache, lendingProgram, lendingGroup, &baseLogger)
	guard := savings.NewGuard(operator, lendingProgram, &baseLogger)
	submitter := savings.NewSubmitter(chain, remoteSigner, cfg.SignerKeyID, operator, &baseLogger)
	recorder := savings.NewRecorder(ledgerRepo, accountRepo, publisher, &baseLogger)
	service := savings.NewService(guard, submitter, recorder, ledgerRepo, chain, notifier, treasury, mint, &baseLogger)
	builder := savings.NewWithdrawBuilder(chain, bankResolver, positionRepo, savings.WithdrawBuilderConfig{
		ProgramID:      lendingProgram,
		Group:          lendingGroup,
		SettlementMint: mint,
		Operator:       operator,
		Treasury:       treasury,
		FeeState:       feeState,
		FeePPM:         cfg.FeeRatePPM,
	}, &baseLogger)

	// 10. Start the HTTP server and wait for shutdown
	server := httpapi.NewServer(service, builder, accountRepo, resolver, &baseLogger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.HTTPAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		baseLogger.Fatal().Err(err).Msg("HTTP server stopped unexpectedly")
	case sig := <-stop:
		baseLogger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func mustKey(value, name string, log zerolog.Logger) solana.PublicKey {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		log.Fatal().Err(err).Msgf("%s is not a valid base58 public key", name)
	}
	return key
}
