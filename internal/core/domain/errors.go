package domain

import "errors"

// Failure taxonomy for the co-signing pipeline. Guard rejections wrap
// ErrInvalidTransaction with a specific reason; those reasons leak no
// secrets and are surfaced verbatim to the client. The submit-side errors
// stay distinct because the caller's safe reaction differs for each:
// a signing or broadcast failure never reached the chain, an execution
// failure did and must not be resubmitted.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidTransaction   = errors.New("invalid transaction")
	ErrSigningFailed        = errors.New("upstream signing failure")
	ErrBroadcastFailed      = errors.New("broadcast failure")
	ErrExecutionFailed      = errors.New("on-chain execution failure")
	ErrDecodeFailure        = errors.New("account decode failure")
	ErrNoActiveBalance      = errors.New("no active balance for settlement mint")
	ErrMissingConfiguration = errors.New("missing configuration")
)

// ErrorCode maps a pipeline error onto the stable code exposed in the
// HTTP error envelope.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, ErrSigningFailed):
		return "signing_failed"
	case errors.Is(err, ErrBroadcastFailed):
		return "broadcast_failed"
	case errors.Is(err, ErrExecutionFailed):
		return "execution_failed"
	case errors.Is(err, ErrDecodeFailure):
		return "decode_failure"
	case errors.Is(err, ErrNoActiveBalance):
		return "no_active_balance"
	default:
		return "internal"
	}
}
