package reservationsvc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	vehiclerepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
)

const DefaultSweepInterval = 10 * time.Second

type expirer interface {
	Expire(ctx context.Context, vehicleID string, now time.Time) error
	RetryRefunds(ctx context.Context) (int, error)
}

// Sweeper releases reservations whose hold period elapsed. Each reservation
// gets a one-shot timer; the periodic sweep catches anything a timer missed.
type Sweeper struct {
	vehicles vehiclerepo.Store
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	exp    expirer
	timers map[string]*time.Timer

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSweeper(vehicles vehiclerepo.Store, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		vehicles: vehicles,
		interval: interval,
		log:      log,
		timers:   make(map[string]*time.Timer),
		stop:     make(chan struct{}),
	}
}

func (w *Sweeper) bind(e expirer) {
	w.mu.Lock()
	w.exp = e
	w.mu.Unlock()
}

func (w *Sweeper) bound() expirer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exp
}

// Schedule arms a timer that expires vehicleID at deadline, replacing any
// timer already armed for it.
func (w *Sweeper) Schedule(vehicleID string, deadline time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[vehicleID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(time.Until(deadline), func() {
		w.mu.Lock()
		if w.timers[vehicleID] == t {
			delete(w.timers, vehicleID)
		}
		e := w.exp
		w.mu.Unlock()

		if e == nil {
			return
		}
		w.expireOne(context.Background(), e, vehicleID, time.Now())
	})
	w.timers[vehicleID] = t
}

// Unschedule disarms the timer for vehicleID. Calling it twice is harmless.
func (w *Sweeper) Unschedule(vehicleID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[vehicleID]; ok {
		t.Stop()
		delete(w.timers, vehicleID)
	}
}

// Pending reports how many expiry timers are armed.
func (w *Sweeper) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// SweepOnce retries refunds left pending by earlier releases, then expires
// every reservation whose deadline is at or before now and returns how many
// were released.
func (w *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	e := w.bound()
	if e == nil {
		return 0, errors.New("sweeper is not bound to a reservation service")
	}

	var (
		released int
		errs     []error
	)
	refunded, err := e.RetryRefunds(ctx)
	if err != nil {
		w.log.Error("retry refunds", "err", err)
		errs = append(errs, err)
	}
	if refunded > 0 {
		w.log.Info("pending refunds issued", "count", refunded)
	}

	all, err := w.vehicles.ListAll(ctx)
	if err != nil {
		return 0, errors.Join(append(errs, err)...)
	}

	for _, v := range all {
		if v.State() != model.StateReserved || v.ReservationDeadline == nil {
			continue
		}
		if now.Before(*v.ReservationDeadline) {
			continue
		}
		ok, err := w.expireOne(ctx, e, v.ID, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			released++
		}
	}
	return released, errors.Join(errs...)
}

// expireOne treats a reservation resolved by someone else as skipped.
func (w *Sweeper) expireOne(ctx context.Context, e expirer, vehicleID string, now time.Time) (bool, error) {
	err := e.Expire(ctx, vehicleID, now)
	switch apperr.Code(err) {
	case "":
		if err != nil {
			w.log.Error("expire reservation", "vehicle_id", vehicleID, "err", err)
			return false, err
		}
		return true, nil
	case apperr.ErrNotReserved, apperr.ErrNotFound:
		w.log.Debug("expire skipped", "vehicle_id", vehicleID, "reason", err.Error())
		return false, nil
	default:
		w.log.Error("expire reservation", "vehicle_id", vehicleID, "err", err)
		return false, err
	}
}

// Run sweeps every interval until ctx is done or Stop is called.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("reservation sweeper started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("reservation sweeper stopped", "reason", ctx.Err().Error())
			return
		case <-w.stop:
			w.log.Info("reservation sweeper stopped")
			return
		case now := <-ticker.C:
			n, err := w.SweepOnce(ctx, now)
			if err != nil {
				w.log.Error("sweep", "err", err)
			}
			if n > 0 {
				w.log.Info("expired reservations released", "count", n)
			}
		}
	}
}

// Stop ends Run and disarms every pending timer.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })

	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}
