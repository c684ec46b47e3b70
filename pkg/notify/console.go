package notify

import (
	"context"
	"log/slog"
)

// ConsoleSender writes the event to the log stream. It cannot fail.
type ConsoleSender struct {
	logger *slog.Logger
}

// NewConsoleSender creates a console sender.
func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (c *ConsoleSender) Name() string { return KindConsole }

func (c *ConsoleSender) Send(_ context.Context, event Event) error {
	attrs := []any{"event", string(event.Kind)}
	if event.Reading != nil {
		attrs = append(attrs,
			"room", event.Reading.RoomDisplayName,
			"money", event.Reading.RemainingMoney,
			"energy", event.Reading.RemainingEnergy,
		)
	}
	if event.Detail != "" {
		attrs = append(attrs, "detail", event.Detail)
	}
	if event.Urgent() {
		c.logger.Warn(event.Title(), attrs...)
	} else {
		c.logger.Info(event.Title(), attrs...)
	}
	return nil
}
