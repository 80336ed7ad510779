// Package alert is the optional operator-alerting sink: it posts one
// Telegram message when the dispatcher aborts on a fatal registry
// invariant violation (spec.md §7). Ported from the teacher's
// internal/externals/telegram (adapted: no long-polling or command
// handling, since this sink only ever sends, never receives, so its
// bot is never started).
package alert

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/mdrp-sim/go-engine/internal/logger"
)

// Sink posts simulation-health alerts to a single Telegram chat.
type Sink struct {
	bot    *tb.Bot
	chatID int64
	log    *logger.Logger
}

// New builds a Sink without starting the bot's update poller: this
// sink only sends messages, so there is nothing to receive.
func New(log *logger.Logger, token string, chatID int64) (*Sink, error) {
	bot, err := tb.NewBot(tb.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("alert: new bot: %w", err)
	}
	return &Sink{bot: bot, chatID: chatID, log: log}, nil
}

// Alert posts message to the configured chat, logging (but not
// propagating) any send failure — an alerting sink must never be the
// reason a run fails to report its own fatal error.
func (s *Sink) Alert(_ context.Context, message string) {
	if _, err := s.bot.Send(&tb.Chat{ID: s.chatID}, message); err != nil && s.log != nil {
		s.log.Error("alert: failed to send telegram message", zap.Error(err))
	}
}
