package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoChannels is returned when validation leaves no channel to send on.
var ErrNoChannels = errors.New("no usable notification channel configured")

// Dispatcher fans one event out to every active channel concurrently.
// Channels fail independently: a slow or broken transport never blocks,
// cancels or fails another channel's attempt. There is no dispatcher-level
// retry; delivery is best effort.
type Dispatcher struct {
	senders []Sender
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher validates the configured channels and builds a sender for
// each one that passes. Skipped and rejected channels are logged and
// dropped; an error is returned only when nothing survives validation.
func NewDispatcher(ctx context.Context, cfg Config, validator *Validator, logger *slog.Logger) (*Dispatcher, error) {
	var senders []Sender
	var rejections []Validation

	for _, kind := range cfg.ActiveKinds() {
		result := validator.Validate(ctx, kind)
		switch result.Verdict {
		case Valid:
			senders = append(senders, newSender(kind, cfg, logger))
		case Skip:
			logger.Warn("notification channel skipped", "channel", kind, "reason", result.Reason)
		case Reject:
			logger.Error("notification channel rejected", "channel", kind, "reason", result.Reason)
			rejections = append(rejections, result)
		}
	}

	if len(senders) == 0 {
		if len(rejections) > 0 {
			return nil, fmt.Errorf("%w: %s rejected: %s", ErrNoChannels, rejections[0].Channel, rejections[0].Reason)
		}
		return nil, ErrNoChannels
	}

	return &Dispatcher{
		senders: senders,
		timeout: cfg.Timeout(),
		logger:  logger,
	}, nil
}

func newSender(kind string, cfg Config, logger *slog.Logger) Sender {
	switch kind {
	case KindConsole:
		return NewConsoleSender(logger)
	case KindWebhook:
		return NewWebhookSender(cfg.Webhook)
	case KindTelegram:
		return NewTelegramSender(cfg.Telegram)
	case KindPushover:
		return NewPushoverSender(cfg.Pushover)
	case KindNtfy:
		return NewNtfySender(cfg.Ntfy)
	case KindEmail:
		return NewEmailSender(cfg.Email)
	default:
		// Unknown kinds are rejected by the validator before we get here.
		return nil
	}
}

// Channels returns the names of the active channels, for logging.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.senders))
	for i, s := range d.senders {
		names[i] = s.Name()
	}
	return names
}

// Dispatch sends the event to all active channels and returns one result
// per channel. It completes when every attempt has finished or timed out.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) []Result {
	results := make([]Result, len(d.senders))

	var wg sync.WaitGroup
	for i, sender := range d.senders {
		wg.Add(1)
		go func(i int, sender Sender) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			start := time.Now()
			err := sender.Send(sendCtx, event)
			results[i] = Result{
				Channel: sender.Name(),
				Err:     err,
				Elapsed: time.Since(start),
			}

			if err != nil {
				d.logger.Error("notification delivery failed",
					"event_id", event.ID,
					"event", string(event.Kind),
					"channel", sender.Name(),
					"error", err,
				)
			} else {
				d.logger.Info("notification delivered",
					"event_id", event.ID,
					"event", string(event.Kind),
					"channel", sender.Name(),
					"elapsed", time.Since(start).Round(time.Millisecond).String(),
				)
			}
		}(i, sender)
	}
	wg.Wait()

	return results
}
