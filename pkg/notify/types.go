package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/upm-go/upm/pkg/model"
)

// EventKind tags what happened upstream of a notification.
type EventKind string

const (
	EventLowBalance   EventKind = "low_balance"
	EventHeartbeat    EventKind = "heartbeat"
	EventLoginFailure EventKind = "login_failure"
	EventFetchFailure EventKind = "fetch_failure"
)

// Event is a single logical notification, consumed immutably by every
// active channel. Reading is set for low_balance and heartbeat events,
// Detail carries the error text for the failure kinds.
type Event struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Reading   *model.Reading `json:"reading,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Urgent reports whether the event must be delivered at each channel's
// maximum priority, overriding the configured default.
func (e Event) Urgent() bool {
	return e.Kind == EventLowBalance
}

// Title returns the human-readable headline for the event.
func (e Event) Title() string {
	switch e.Kind {
	case EventLowBalance:
		return "Low Power Warning"
	case EventHeartbeat:
		return "Daily Power Report"
	case EventLoginFailure:
		return "Portal Login Failed"
	case EventFetchFailure:
		return "Balance Fetch Failed"
	default:
		return "Power Monitor Notification"
	}
}

// Body renders the shared message text sent by text-based channels.
func (e Event) Body() string {
	if e.Reading != nil {
		return fmt.Sprintf("Room: %s\nMoney: %.2f CNY\nEnergy: %.2f kWh\nTime: %s",
			e.Reading.RoomDisplayName,
			e.Reading.RemainingMoney,
			e.Reading.RemainingEnergy,
			e.Reading.CapturedAt.Format(time.RFC3339),
		)
	}
	return e.Detail
}

// Sender delivers one event over one channel transport.
type Sender interface {
	// Name returns the channel identifier.
	Name() string

	// Send delivers an event. Implementations must be safe for concurrent use.
	Send(ctx context.Context, event Event) error
}

// Result records the outcome of one channel's delivery attempt.
type Result struct {
	Channel string
	Err     error
	Elapsed time.Duration
}

// Channel kind names as they appear in notify_type / notify_types.
const (
	KindConsole  = "console"
	KindWebhook  = "webhook"
	KindTelegram = "telegram"
	KindPushover = "pushover"
	KindNtfy     = "ntfy"
	KindEmail    = "email"
)

// Kinds lists every channel kind the dispatcher knows how to build.
func Kinds() []string {
	return []string{KindConsole, KindWebhook, KindTelegram, KindPushover, KindNtfy, KindEmail}
}
