package notify

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Verdict classifies a channel configuration.
type Verdict int

const (
	// Valid means the channel is complete and safe to activate.
	Valid Verdict = iota
	// Skip means required fields are missing; the channel is dropped
	// from the active set without aborting startup.
	Skip
	// Reject means the configuration is present but unsafe to use.
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Skip:
		return "skip"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Validation is the outcome of validating one channel.
type Validation struct {
	Channel string
	Verdict Verdict
	Reason  string
}

// LookupIPFunc resolves a hostname to its addresses. Swappable in tests.
type LookupIPFunc func(ctx context.Context, host string) ([]net.IP, error)

// Validator checks per-channel configuration completeness and outbound
// URL safety. The zero value is not usable; use NewValidator.
type Validator struct {
	lookupIP LookupIPFunc
	cfg      Config
}

// NewValidator creates a validator that resolves hostnames against real DNS.
func NewValidator(cfg Config) *Validator {
	resolver := &net.Resolver{}
	return &Validator{
		cfg: cfg,
		lookupIP: func(ctx context.Context, host string) ([]net.IP, error) {
			addrs, err := resolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, err
			}
			ips := make([]net.IP, 0, len(addrs))
			for _, a := range addrs {
				ips = append(ips, a.IP)
			}
			return ips, nil
		},
	}
}

// WithLookup overrides DNS resolution, for tests.
func (v *Validator) WithLookup(fn LookupIPFunc) *Validator {
	v.lookupIP = fn
	return v
}

// Validate checks one channel kind against the configuration.
func (v *Validator) Validate(ctx context.Context, kind string) Validation {
	switch kind {
	case KindConsole:
		return Validation{Channel: kind, Verdict: Valid}
	case KindWebhook:
		if v.cfg.Webhook.URL == "" {
			return skip(kind, "webhook url not set")
		}
		return v.checkURL(ctx, kind, v.cfg.Webhook.URL)
	case KindTelegram:
		if v.cfg.Telegram.BotToken == "" || v.cfg.Telegram.ChatID == "" {
			return skip(kind, "telegram bot_token or chat_id not set")
		}
		return Validation{Channel: kind, Verdict: Valid}
	case KindPushover:
		if v.cfg.Pushover.APIToken == "" || v.cfg.Pushover.UserKey == "" {
			return skip(kind, "pushover api_token or user_key not set")
		}
		return Validation{Channel: kind, Verdict: Valid}
	case KindNtfy:
		if v.cfg.Ntfy.TopicURL == "" {
			return skip(kind, "ntfy topic_url not set")
		}
		return v.checkURL(ctx, kind, v.cfg.Ntfy.TopicURL)
	case KindEmail:
		e := v.cfg.Email
		if e.Host == "" || e.From == "" || len(e.To) == 0 {
			return skip(kind, "email host, from or to not set")
		}
		switch e.Encryption {
		case "", "starttls", "tls", "none":
		default:
			return reject(kind, fmt.Sprintf("unknown email encryption %q", e.Encryption))
		}
		return Validation{Channel: kind, Verdict: Valid}
	default:
		return reject(kind, fmt.Sprintf("unknown channel kind %q", kind))
	}
}

// checkURL enforces the outbound SSRF guard: https only, and the target
// host must not resolve to a loopback, link-local or private address.
// Resolution runs against actual DNS answers, so a public hostname that
// points at an internal address is rejected the same as a literal IP.
func (v *Validator) checkURL(ctx context.Context, kind, raw string) Validation {
	u, err := url.Parse(raw)
	if err != nil {
		return reject(kind, fmt.Sprintf("invalid url: %v", err))
	}
	if u.Scheme != "https" {
		return reject(kind, fmt.Sprintf("insecure scheme %q, only https is allowed", u.Scheme))
	}
	host := u.Hostname()
	if host == "" {
		return reject(kind, "url has no host")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ips, err := v.lookupIP(lookupCtx, host)
	if err != nil {
		return reject(kind, fmt.Sprintf("resolve %s: %v", host, err))
	}
	if len(ips) == 0 {
		return reject(kind, fmt.Sprintf("host %s resolves to no addresses", host))
	}
	for _, ip := range ips {
		if !publicIP(ip) {
			return reject(kind, fmt.Sprintf("host %s resolves to non-public address %s", host, ip))
		}
	}
	return Validation{Channel: kind, Verdict: Valid}
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified())
}

func skip(channel, reason string) Validation {
	return Validation{Channel: channel, Verdict: Skip, Reason: reason}
}

func reject(channel, reason string) Validation {
	return Validation{Channel: channel, Verdict: Reject, Reason: reason}
}
