// Package daemon owns the polling cadence and the daily heartbeat. Both
// timers feed the same alert machine; persistence and alerting stay
// decoupled so a storage outage never suppresses an alert.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/upm-go/upm/internal/config"
	"github.com/upm-go/upm/pkg/alert"
	"github.com/upm-go/upm/pkg/model"
	"github.com/upm-go/upm/pkg/notify"
	"github.com/upm-go/upm/pkg/portal"
	"github.com/upm-go/upm/pkg/storage"
)

// Daemon drives the poll loop and the heartbeat schedule.
type Daemon struct {
	cfg        *config.Config
	client     portal.Client
	store      storage.Storage
	machine    *alert.Machine
	dispatcher *notify.Dispatcher
	logger     *slog.Logger

	// loggedIn is touched only from the poll loop goroutine.
	loggedIn bool
}

// New wires a daemon from its collaborators.
func New(cfg *config.Config, client portal.Client, store storage.Storage, machine *alert.Machine, dispatcher *notify.Dispatcher, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:        cfg,
		client:     client,
		store:      store,
		machine:    machine,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run polls until the context is cancelled. Shutdown stops scheduling new
// ticks; in-flight dispatch attempts run to their own timeouts.
func (d *Daemon) Run(ctx context.Context) error {
	if last, err := d.store.LatestReading(ctx); err != nil {
		d.logger.Warn("load latest reading", "error", err)
	} else if last != nil {
		d.machine.SeedReading(last)
	}

	heartbeat := cron.New()
	if d.cfg.Notify.HeartbeatEnabled {
		spec := fmt.Sprintf("0 %d * * *", d.cfg.Notify.HeartbeatHour)
		if _, err := heartbeat.AddFunc(spec, func() {
			d.emit(ctx, d.machine.OnHeartbeatTick())
		}); err != nil {
			return fmt.Errorf("schedule heartbeat: %w", err)
		}
		heartbeat.Start()
		defer func() { <-heartbeat.Stop().Done() }()
	}

	interval := time.Duration(d.cfg.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("monitor started",
		"interval", interval.String(),
		"channels", d.dispatcher.Channels(),
		"threshold", d.cfg.Notify.Threshold,
	)

	d.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("monitor stopping")
			return nil
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

// poll runs one fetch cycle: acquire a reading, persist it
// unconditionally, and feed it through the alert machine.
func (d *Daemon) poll(ctx context.Context) {
	reading, err := d.fetch(ctx)
	if err != nil {
		var loginErr *portal.LoginError
		if errors.As(err, &loginErr) {
			d.logger.Error("portal login failed", "error", err)
			d.emit(ctx, d.machine.OnLoginFailure(err))
		} else {
			d.logger.Error("balance fetch failed", "error", err)
			d.emit(ctx, d.machine.OnFetchFailure(err))
		}
		return
	}

	d.logger.Info("reading fetched",
		"room", reading.RoomDisplayName,
		"money", reading.RemainingMoney,
		"energy", reading.RemainingEnergy,
	)

	if err := d.store.SaveReading(ctx, reading); err != nil {
		d.logger.Error("save reading", "error", err)
	}

	d.emit(ctx, d.machine.OnReading(*reading))
}

// fetch reuses the session when possible and re-logins once on expiry.
func (d *Daemon) fetch(ctx context.Context) (*model.Reading, error) {
	if !d.loggedIn {
		if err := d.client.Login(ctx); err != nil {
			return nil, err
		}
		d.loggedIn = true
	}

	reading, err := d.client.FetchBalance(ctx)
	if err != nil && errors.Is(err, portal.ErrSessionExpired) {
		d.loggedIn = false
		if err := d.client.Login(ctx); err != nil {
			return nil, err
		}
		d.loggedIn = true
		return d.client.FetchBalance(ctx)
	}
	return reading, err
}

func (d *Daemon) emit(ctx context.Context, event *notify.Event) {
	if event == nil {
		return
	}
	// Cancellation is dropped so an in-flight send finishes or times out
	// on its own rather than aborting mid-transport at shutdown.
	d.dispatcher.Dispatch(context.WithoutCancel(ctx), *event)
}
