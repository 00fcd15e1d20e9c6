package httpapi

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/savings"
	"NestVault/internal/shared/fixedpoint"
	"encoding/base64"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gofiber/fiber/v2"
)

const walletKey = "wallet"

func callerWallet(c *fiber.Ctx) solana.PublicKey {
	return c.Locals(walletKey).(solana.PublicKey)
}

type sendRequestBody struct {
	SignedTransaction string `json:"signedTransaction" validate:"required,base64"`
	AccountType       string `json:"accountType" validate:"required,oneof=flex plus"`
	Direction         string `json:"direction" validate:"omitempty,oneof=deposit withdraw"`
}

type sendResponse struct {
	OK         bool                `json:"ok"`
	Signature  string              `json:"signature"`
	Recorded   bool                `json:"recorded"`
	Reason     string              `json:"reason,omitempty"`
	Accounting *savings.Accounting `json:"accounting,omitempty"`
}

// handleSend accepts a user-signed transaction for co-signing and
// submission.
func (s *Server) handleSend(c *fiber.Ctx) error {
	var body sendRequestBody
	if err := c.BodyParser(&body); err != nil {
		return writeValidationError(c, err)
	}
	if err := s.validate.Struct(body); err != nil {
		return writeValidationError(c, err)
	}

	raw, err := base64.StdEncoding.DecodeString(body.SignedTransaction)
	if err != nil {
		return writeValidationError(c, err)
	}
	accountType, err := domain.ParseAccountType(body.AccountType)
	if err != nil {
		return writeError(c, err)
	}
	declared, err := domain.ParseDirection(body.Direction)
	if err != nil {
		return writeError(c, err)
	}

	res, err := s.sender.Send(c.Context(), savings.SendRequest{
		SignedTransaction: raw,
		Wallet:            callerWallet(c),
		AccountType:       accountType,
		Declared:          declared,
	})
	if err != nil {
		// A reverted transaction still carries its signature; the client
		// needs it for support and explorers.
		if errors.Is(err, domain.ErrExecutionFailed) && res != nil {
			return c.Status(fiber.StatusConflict).JSON(errorResponse{
				Code:      domain.ErrorCode(err),
				Message:   err.Error(),
				Signature: res.Signature,
			})
		}
		return writeError(c, err)
	}

	return c.JSON(sendResponse{
		OK:         true,
		Signature:  res.Signature,
		Recorded:   res.Recorded,
		Reason:     res.Reason,
		Accounting: res.Accounting,
	})
}

type buildWithdrawalBody struct {
	AmountUI       string `json:"amountUi" validate:"omitempty,max=32"`
	WithdrawAll    bool   `json:"withdrawAll"`
	EnsureAccounts bool   `json:"ensureAccounts"`
}

type buildWithdrawalResponse struct {
	Transaction    string `json:"transaction"`
	Bank           string `json:"bank"`
	FeeUI          string `json:"feeUi"`
	NetUI          string `json:"netUi"`
	RequiredSigner string `json:"requiredSigner"`
	FeePayer       string `json:"feePayer"`
	ComputeUnits   uint32 `json:"computeUnits"`
	WithdrawAll    bool   `json:"withdrawAll"`
}

// handleBuildWithdrawal returns an unsigned withdrawal transaction for
// the caller to sign and hand back through /savings/send.
func (s *Server) handleBuildWithdrawal(c *fiber.Ctx) error {
	var body buildWithdrawalBody
	if err := c.BodyParser(&body); err != nil {
		return writeValidationError(c, err)
	}
	if err := s.validate.Struct(body); err != nil {
		return writeValidationError(c, err)
	}

	built, err := s.builder.Build(c.Context(), savings.WithdrawRequest{
		Wallet:         callerWallet(c),
		AmountUI:       body.AmountUI,
		WithdrawAll:    body.WithdrawAll,
		EnsureAccounts: body.EnsureAccounts,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(buildWithdrawalResponse{
		Transaction:    base64.StdEncoding.EncodeToString(built.Transaction),
		Bank:           built.Bank.String(),
		FeeUI:          fixedpoint.FromMinor(built.FeeMinor),
		NetUI:          fixedpoint.FromMinor(built.NetMinor),
		RequiredSigner: built.RequiredSigner.String(),
		FeePayer:       built.FeePayer.String(),
		ComputeUnits:   built.ComputeUnits,
		WithdrawAll:    built.WithdrawAll,
	})
}

type accountResponse struct {
	Wallet             string `json:"wallet"`
	AccountType        string `json:"accountType"`
	PrincipalDeposited string `json:"principalDeposited"`
	PrincipalWithdrawn string `json:"principalWithdrawn"`
	InterestWithdrawn  string `json:"interestWithdrawn"`
	TotalDeposited     string `json:"totalDeposited"`
	TotalWithdrawn     string `json:"totalWithdrawn"`
	FeesPaid           string `json:"feesPaid"`
	LastSyncedAt       string `json:"lastSyncedAt,omitempty"`
}

// handleGetAccount returns the caller's savings aggregate. A wallet with
// no recorded activity reads as all zeros, not as an error.
func (s *Server) handleGetAccount(c *fiber.Ctx) error {
	wallet := callerWallet(c)
	accountType, err := domain.ParseAccountType(c.Query("type", string(domain.AccountFlex)))
	if err != nil {
		return writeError(c, err)
	}

	acct, err := s.accounts.Get(c.Context(), wallet.String(), accountType)
	if err != nil {
		s.log.Error().Err(err).Str("wallet", wallet.String()).Msg("Aggregate lookup failed")
		return writeError(c, err)
	}
	if acct == nil {
		acct = &domain.SavingsAccount{Wallet: wallet.String(), AccountType: accountType}
	}

	resp := accountResponse{
		Wallet:             acct.Wallet,
		AccountType:        string(acct.AccountType),
		PrincipalDeposited: fixedpoint.FromMinor(acct.PrincipalDeposited),
		PrincipalWithdrawn: fixedpoint.FromMinor(acct.PrincipalWithdrawn),
		InterestWithdrawn:  fixedpoint.FromMinor(acct.InterestWithdrawn),
		TotalDeposited:     fixedpoint.FromMinor(acct.TotalDeposited),
		TotalWithdrawn:     fixedpoint.FromMinor(acct.TotalWithdrawn),
		FeesPaid:           fixedpoint.FromMinor(acct.FeesPaid),
	}
	if !acct.LastSyncedAt.IsZero() {
		resp.LastSyncedAt = acct.LastSyncedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return c.JSON(resp)
}
