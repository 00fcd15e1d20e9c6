package telegram

import (
	"NestVault/internal/core/ports"
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// notifier posts operational alerts into the on-call chat. Alerts cover
// the states a human must look at: reverted transactions, unrecorded
// movements, ledger write failures.
type notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ ports.OpsNotifier = (*notifier)(nil) // Ensure compliance

// NewNotifier creates the ops-chat notifier.
func NewNotifier(api *tgbotapi.BotAPI, chatID int64, baseLogger *zerolog.Logger) ports.OpsNotifier {
	return &notifier{
		api:    api,
		chatID: chatID,
		log:    baseLogger.With().Str("component", "ops_notifier").Logger(),
	}
}

// Alert sends one plain-text message to the ops chat.
func (n *notifier) Alert(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.log.Error().Err(err).Int64("chat_id", n.chatID).Msg("Failed to send ops alert")
		return err
	}
	return nil
}
