package ports

import "context"

// EntryRecordedEvent is emitted after a ledger entry wins the first-writer
// race. Amounts are UI-formatted strings so consumers never re-derive the
// minor-unit scale.
type EntryRecordedEvent struct {
	EntryID     string `json:"entry_id"`
	Wallet      string `json:"wallet"`
	AccountType string `json:"account_type"`
	Direction   string `json:"direction"`
	AmountUI    string `json:"amount_ui"`
	FeeUI       string `json:"fee_ui"`
	PrincipalUI string `json:"principal_ui"`
	InterestUI  string `json:"interest_ui"`
	Signature   string `json:"signature"`
	RecordedAt  string `json:"recorded_at"`
}

// EventPublisher pushes recorded-entry events to downstream consumers.
// Publishing is best effort; a failure never unwinds the ledger write.
type EventPublisher interface {
	PublishEntryRecorded(ctx context.Context, event EntryRecordedEvent) error
}
