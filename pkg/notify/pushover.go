package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const pushoverAPIURL = "https://api.pushover.net/1/messages.json"

// Emergency-priority sends must tell Pushover how often to re-deliver and
// when to give up; the provider enforces these bounds.
const (
	pushoverEmergency = 2
	pushoverMinRetry  = 30
	pushoverMinExpire = 30
	pushoverMaxExpire = 10800
)

// PushoverSender delivers events through the Pushover message API.
// Urgent events go out at emergency priority with the configured
// retry/expire window; Pushover itself re-delivers until the message is
// acknowledged or expires. The sender never loops retries on its own.
type PushoverSender struct {
	cfg    PushoverConfig
	client *http.Client
	apiURL string
}

// NewPushoverSender creates a Pushover sender.
func NewPushoverSender(cfg PushoverConfig) *PushoverSender {
	return &PushoverSender{
		cfg:    cfg,
		client: &http.Client{},
		apiURL: pushoverAPIURL,
	}
}

func (p *PushoverSender) Name() string { return KindPushover }

func (p *PushoverSender) Send(ctx context.Context, event Event) error {
	priority := p.cfg.Priority
	if event.Urgent() {
		priority = pushoverEmergency
	}

	form := url.Values{}
	form.Set("token", p.cfg.APIToken)
	form.Set("user", p.cfg.UserKey)
	form.Set("title", event.Title())
	form.Set("message", event.Body())
	form.Set("priority", strconv.Itoa(priority))

	if priority == pushoverEmergency {
		form.Set("retry", strconv.Itoa(clamp(p.cfg.RetrySeconds, pushoverMinRetry, pushoverMaxExpire)))
		form.Set("expire", strconv.Itoa(clamp(p.cfg.ExpireSeconds, pushoverMinExpire, pushoverMaxExpire)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pushover message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
