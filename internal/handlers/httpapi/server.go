package httpapi

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"NestVault/internal/core/savings"
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Sender runs the co-signing pipeline for one signed transaction.
type Sender interface {
	Send(ctx context.Context, req savings.SendRequest) (*savings.SendResult, error)
}

// Builder assembles unsigned withdrawal transactions.
type Builder interface {
	Build(ctx context.Context, req savings.WithdrawRequest) (*savings.BuiltWithdrawal, error)
}

// Server is the HTTP surface of the co-signing service.
type Server struct {
	app      *fiber.App
	sender   Sender
	builder  Builder
	accounts ports.SavingsAccountRepository
	identity ports.IdentityResolver
	validate *validator.Validate
	log      zerolog.Logger
}

func NewServer(sender Sender, builder Builder, accounts ports.SavingsAccountRepository, identity ports.IdentityResolver, baseLogger *zerolog.Logger) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		sender:   sender,
		builder:  builder,
		accounts: accounts,
		identity: identity,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      baseLogger.With().Str("component", "http_server").Logger(),
	}

	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/savings", s.requireWallet)
	api.Post("/send", s.handleSend)
	api.Post("/withdraw/build", s.handleBuildWithdrawal)
	api.Get("/account", s.handleGetAccount)

	return s
}

// Listen blocks serving requests until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// requireWallet resolves the bearer token to the caller's wallet and
// stashes it in the request context. Every /savings route runs behind it.
func (s *Server) requireWallet(c *fiber.Ctx) error {
	const prefix = "Bearer "
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return writeError(c, domain.ErrUnauthorized)
	}

	wallet, err := s.identity.Resolve(c.Context(), header[len(prefix):])
	if err != nil {
		s.log.Warn().Err(err).Msg("Token verification failed")
		return writeError(c, domain.ErrUnauthorized)
	}
	c.Locals(walletKey, wallet)
	return c.Next()
}
