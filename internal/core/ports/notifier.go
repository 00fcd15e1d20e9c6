package ports

import "context"

// OpsNotifier pushes human-facing alerts to the operations channel:
// reconciliation anomalies, on-chain execution failures, anything that
// moved funds without producing a ledger row. Best effort.
type OpsNotifier interface {
	Alert(ctx context.Context, text string) error
}
