package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ntfy's maximum priority, used for urgent events.
const ntfyMaxPriority = 5

// NtfySender publishes events to an ntfy topic URL.
type NtfySender struct {
	cfg    NtfyConfig
	client *http.Client
}

// NewNtfySender creates an ntfy sender.
func NewNtfySender(cfg NtfyConfig) *NtfySender {
	return &NtfySender{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (n *NtfySender) Name() string { return KindNtfy }

func (n *NtfySender) Send(ctx context.Context, event Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.TopicURL, strings.NewReader(event.Body()))
	if err != nil {
		return fmt.Errorf("create ntfy request: %w", err)
	}

	priority := n.cfg.Priority
	if event.Urgent() {
		priority = ntfyMaxPriority
	}

	req.Header.Set("X-Title", event.Title())
	if priority > 0 {
		req.Header.Set("X-Priority", strconv.Itoa(priority))
	}
	if n.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	}
	if len(n.cfg.Tags) > 0 {
		req.Header.Set("X-Tags", strings.Join(n.cfg.Tags, ","))
	}
	if n.cfg.ClickAction != "" {
		req.Header.Set("X-Click", n.cfg.ClickAction)
	}
	if n.cfg.Icon != "" {
		req.Header.Set("X-Icon", n.cfg.Icon)
	}
	if n.cfg.Markdown {
		req.Header.Set("X-Markdown", "yes")
	}
	if len(n.cfg.Actions) > 0 {
		req.Header.Set("X-Actions", strings.Join(n.cfg.Actions, "; "))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
