package reservationsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	claimrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/claim"
	eventsrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/events"
	vehiclerepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
	paymentsvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/payment"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/keylock"
)

// DefaultHoldPeriod is how long a reservation blocks a vehicle before it can be expired.
const DefaultHoldPeriod = 120 * time.Second

// Reservation is what a holder needs to pay for a reserved vehicle.
type Reservation struct {
	VehicleID string    `json:"vehicle_id"`
	Holder    string    `json:"holder"`
	Deadline  time.Time `json:"deadline"`
	Memo      uint64    `json:"memo"`
	Amount    uint64    `json:"amount"`
	PayTo     string    `json:"pay_to"`
}

type Service interface {
	// Reserve moves an Available vehicle to Reserved(holder, now+HoldPeriod).
	Reserve(ctx context.Context, vehicleID, holder string, now time.Time) (*Reservation, error)
	// Expire returns a Reserved vehicle whose deadline passed to Available.
	// A paid holder is refunded; a failed refund is returned as ErrPaymentFailed
	// after the vehicle is released.
	Expire(ctx context.Context, vehicleID string, now time.Time) error
	// VerifyPayment checks the ledger for the holder's payment and records the result on the claim.
	VerifyPayment(ctx context.Context, vehicleID, holder string, blockIndex uint64) error
	// ConfirmPurchase sells the vehicle to its holder once the payment is verified.
	ConfirmPurchase(ctx context.Context, vehicleID, holder string) (*model.Vehicle, error)
	Cancel(ctx context.Context, vehicleID, holder string) error
	// RetryRefunds pays back every released claim still awaiting its refund.
	RetryRefunds(ctx context.Context) (int, error)
	HoldPeriod() time.Duration
}

type Config struct {
	HoldPeriod     time.Duration
	ReservationFee uint64
	// Clock stamps transitions that carry no caller time and decides whether a
	// hold is still live for verify and confirm. Defaults to time.Now.
	Clock func() time.Time
	// Locks is shared with any other writer of the inventory so that every
	// mutation of one vehicle is serialized.
	Locks *keylock.Locker
}

type service struct {
	vehicles vehiclerepo.Store
	claims   claimrepo.Store
	pay      paymentsvc.Service
	events   eventsrepo.Publisher
	sweeper  *Sweeper
	locks    *keylock.Locker
	hold     time.Duration
	fee      uint64
	clock    func() time.Time
	log      *slog.Logger
	tracer   trace.Tracer
}

// New builds the state machine. A non-nil sweeper gets expiry timers for every
// reservation and is bound to this service for its periodic sweeps.
func New(
	vehicles vehiclerepo.Store,
	claims claimrepo.Store,
	pay paymentsvc.Service,
	events eventsrepo.Publisher,
	sweeper *Sweeper,
	cfg Config,
	log *slog.Logger,
) Service {
	if cfg.HoldPeriod <= 0 {
		cfg.HoldPeriod = DefaultHoldPeriod
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Locks == nil {
		cfg.Locks = keylock.New()
	}
	if events == nil {
		events = eventsrepo.Nop()
	}
	if log == nil {
		log = slog.Default()
	}
	s := &service{
		vehicles: vehicles,
		claims:   claims,
		pay:      pay,
		events:   events,
		sweeper:  sweeper,
		locks:    cfg.Locks,
		hold:     cfg.HoldPeriod,
		fee:      cfg.ReservationFee,
		clock:    cfg.Clock,
		log:      log,
		tracer:   otel.Tracer("car-bazar/reservation"),
	}
	if sweeper != nil {
		sweeper.bind(s)
	}
	return s
}

func (s *service) HoldPeriod() time.Duration { return s.hold }

func (s *service) Reserve(ctx context.Context, vehicleID, holder string, now time.Time) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.reserve", trace.WithAttributes(
		attribute.String("vehicle.id", vehicleID),
		attribute.String("reservation.holder", holder),
	))
	defer span.End()

	if holder == "" {
		return nil, apperr.Make(apperr.ErrInvalidPayload, "holder is required")
	}

	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.load(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.Available {
		return nil, apperr.Make(apperr.ErrAlreadyReserved, vehicleID)
	}
	if v.Price > math.MaxUint64-s.fee {
		return nil, apperr.Make(apperr.ErrInvalidPayload, "price plus reservation fee overflows")
	}

	deadline := now.Add(s.hold)
	claim := &model.ReservationClaim{
		Memo:      paymentsvc.CorrelationID(vehicleID, holder, now),
		VehicleID: vehicleID,
		Claimant:  holder,
		Amount:    v.Price + s.fee,
		Status:    model.ClaimPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.claims.DeleteByVehicle(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("drop stale claims: %w", err)
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		if errors.Is(err, claimrepo.ErrDuplicate) {
			return nil, apperr.Make(apperr.ErrAlreadyReserved, vehicleID)
		}
		return nil, fmt.Errorf("create claim: %w", err)
	}

	v.Available = false
	v.Reserved = true
	v.ReservedTo = &holder
	v.ReservationDeadline = &deadline
	v.UpdatedAt = now
	if err := s.vehicles.Put(ctx, v); err != nil {
		if _, derr := s.claims.DeleteByVehicle(ctx, vehicleID); derr != nil {
			s.log.Error("rollback claim", "vehicle_id", vehicleID, "err", derr)
		}
		return nil, fmt.Errorf("put vehicle: %w", err)
	}

	if s.sweeper != nil {
		s.sweeper.Schedule(vehicleID, deadline)
	}
	s.publish(ctx, eventsrepo.Event{
		Type:       eventsrepo.VehicleReserved,
		VehicleID:  vehicleID,
		Principal:  holder,
		Memo:       claim.Memo,
		Amount:     claim.Amount,
		OccurredAt: now,
	})
	s.log.Info("vehicle reserved", "vehicle_id", vehicleID, "holder", holder, "deadline", deadline)

	return &Reservation{
		VehicleID: vehicleID,
		Holder:    holder,
		Deadline:  deadline,
		Memo:      claim.Memo,
		Amount:    claim.Amount,
		PayTo:     s.pay.ServiceAddress().Hex(),
	}, nil
}

func (s *service) Expire(ctx context.Context, vehicleID string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "reservation.expire", trace.WithAttributes(
		attribute.String("vehicle.id", vehicleID),
	))
	defer span.End()

	unlock := s.locks.Lock(vehicleID)
	v, err := s.load(ctx, vehicleID)
	if err != nil {
		unlock()
		return err
	}
	switch v.State() {
	case model.StateAvailable:
		unlock()
		return nil
	case model.StateSold:
		unlock()
		return apperr.Make(apperr.ErrNotReserved, "vehicle is sold")
	}
	if now.Before(*v.ReservationDeadline) {
		unlock()
		return apperr.Make(apperr.ErrNotReserved, "hold period has not elapsed")
	}

	holder := *v.ReservedTo
	paid, err := s.release(ctx, v, now)
	unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, eventsrepo.Event{
		Type:       eventsrepo.VehicleExpired,
		VehicleID:  vehicleID,
		Principal:  holder,
		OccurredAt: now,
	})
	s.log.Info("reservation expired", "vehicle_id", vehicleID, "holder", holder)
	if paid != nil {
		return s.refund(ctx, paid.Memo)
	}
	return nil
}

func (s *service) VerifyPayment(ctx context.Context, vehicleID, holder string, blockIndex uint64) error {
	ctx, span := s.tracer.Start(ctx, "reservation.verify_payment", trace.WithAttributes(
		attribute.String("vehicle.id", vehicleID),
		attribute.Int64("payment.block_index", int64(blockIndex)),
	))
	defer span.End()

	unlock := s.locks.Lock(vehicleID)
	claim, err := s.heldClaim(ctx, vehicleID, holder)
	unlock()
	if err != nil {
		return err
	}
	if claim.Status == model.ClaimCompleted {
		return nil
	}

	// The ledger round trip runs without the vehicle lock.
	ok, err := s.pay.Verify(ctx, holder, claim.Amount, blockIndex, claim.Memo)
	if err != nil {
		if apperr.Code(err) != "" {
			return err
		}
		return apperr.Wrap(apperr.ErrPaymentFailed, "verify", err)
	}

	unlock = s.locks.Lock(vehicleID)
	defer unlock()

	current, err := s.heldClaim(ctx, vehicleID, holder)
	if err != nil {
		return err
	}
	if current.Memo != claim.Memo {
		return apperr.Make(apperr.ErrNotReserved, "reservation changed during verification")
	}

	now := s.clock()
	current.BlockIndex = &blockIndex
	current.UpdatedAt = now
	ev := eventsrepo.Event{
		VehicleID:  vehicleID,
		Principal:  holder,
		Memo:       current.Memo,
		Amount:     current.Amount,
		BlockIndex: &blockIndex,
		OccurredAt: now,
	}
	if ok {
		current.Status = model.ClaimCompleted
		ev.Type = eventsrepo.PaymentVerified
	} else {
		current.Status = model.ClaimFailed
		ev.Type = eventsrepo.PaymentRejected
	}
	if err := s.claims.Update(ctx, current); err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	s.publish(ctx, ev)

	if !ok {
		s.log.Warn("payment not found on ledger", "vehicle_id", vehicleID, "holder", holder, "block_index", blockIndex)
		return apperr.Make(apperr.ErrPaymentRequired, "no matching transfer")
	}
	s.log.Info("payment verified", "vehicle_id", vehicleID, "holder", holder, "block_index", blockIndex)
	return nil
}

func (s *service) ConfirmPurchase(ctx context.Context, vehicleID, holder string) (*model.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.confirm_purchase", trace.WithAttributes(
		attribute.String("vehicle.id", vehicleID),
	))
	defer span.End()

	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	claim, err := s.heldClaim(ctx, vehicleID, holder)
	if err != nil {
		return nil, err
	}
	if claim.Status != model.ClaimCompleted {
		return nil, apperr.Make(apperr.ErrPaymentRequired, "payment not verified")
	}

	v, err := s.load(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	v.Available = false
	v.Reserved = false
	v.ReservedTo = nil
	v.ReservationDeadline = nil
	v.Owner = &holder
	v.UpdatedAt = now
	if err := s.vehicles.Put(ctx, v); err != nil {
		return nil, fmt.Errorf("put vehicle: %w", err)
	}
	if _, err := s.claims.DeleteByVehicle(ctx, vehicleID); err != nil {
		s.log.Error("drop claims", "vehicle_id", vehicleID, "err", err)
	}
	if s.sweeper != nil {
		s.sweeper.Unschedule(vehicleID)
	}

	s.publish(ctx, eventsrepo.Event{
		Type:       eventsrepo.VehicleSold,
		VehicleID:  vehicleID,
		Principal:  holder,
		Memo:       claim.Memo,
		Amount:     claim.Amount,
		BlockIndex: claim.BlockIndex,
		OccurredAt: now,
	})
	s.log.Info("vehicle sold", "vehicle_id", vehicleID, "owner", holder)
	return v.Clone(), nil
}

func (s *service) Cancel(ctx context.Context, vehicleID, holder string) error {
	ctx, span := s.tracer.Start(ctx, "reservation.cancel", trace.WithAttributes(
		attribute.String("vehicle.id", vehicleID),
	))
	defer span.End()

	unlock := s.locks.Lock(vehicleID)
	v, err := s.load(ctx, vehicleID)
	if err != nil {
		unlock()
		return err
	}
	if v.State() != model.StateReserved {
		unlock()
		return apperr.Make(apperr.ErrNotReserved, vehicleID)
	}
	if *v.ReservedTo != holder {
		unlock()
		return apperr.Make(apperr.ErrNotOwner, "only the holder can cancel")
	}

	now := s.clock()
	paid, err := s.release(ctx, v, now)
	unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, eventsrepo.Event{
		Type:       eventsrepo.VehicleCancelled,
		VehicleID:  vehicleID,
		Principal:  holder,
		OccurredAt: now,
	})
	s.log.Info("reservation cancelled", "vehicle_id", vehicleID, "holder", holder)
	if paid != nil {
		return s.refund(ctx, paid.Memo)
	}
	return nil
}

func (s *service) RetryRefunds(ctx context.Context) (int, error) {
	pending, err := s.claims.RefundsPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending refunds: %w", err)
	}
	var (
		done int
		errs []error
	)
	for _, c := range pending {
		if err := s.refund(ctx, c.Memo); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// load fetches a vehicle and maps a missing id to ErrNotFound.
func (s *service) load(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	v, err := s.vehicles.Get(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	if v == nil {
		return nil, apperr.Make(apperr.ErrNotFound, vehicleID)
	}
	return v, nil
}

// heldClaim returns the live claim of a vehicle Reserved by holder. Caller holds the lock.
func (s *service) heldClaim(ctx context.Context, vehicleID, holder string) (*model.ReservationClaim, error) {
	v, err := s.load(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.State() != model.StateReserved {
		return nil, apperr.Make(apperr.ErrNotReserved, vehicleID)
	}
	if *v.ReservedTo != holder {
		return nil, apperr.Make(apperr.ErrNotOwner, "vehicle is reserved by another principal")
	}
	if !s.clock().Before(*v.ReservationDeadline) {
		return nil, apperr.Make(apperr.ErrNotReserved, "hold period has elapsed")
	}
	claim, err := s.claims.ActiveForVehicle(ctx, vehicleID)
	if errors.Is(err, claimrepo.ErrNotFound) {
		return nil, apperr.Make(apperr.ErrNotReserved, "no claim for reservation")
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// release puts a Reserved vehicle back on sale and drops its claims. A paid
// claim is kept as REFUND_PENDING and returned. Caller holds the lock.
func (s *service) release(ctx context.Context, v *model.Vehicle, now time.Time) (*model.ReservationClaim, error) {
	var paid *model.ReservationClaim
	claim, err := s.claims.ActiveForVehicle(ctx, v.ID)
	switch {
	case err == nil && claim.Status == model.ClaimCompleted:
		paid = claim
	case err != nil && !errors.Is(err, claimrepo.ErrNotFound):
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if paid != nil {
		paid.Status = model.ClaimRefundPending
		paid.UpdatedAt = now
		if err := s.claims.Update(ctx, paid); err != nil {
			return nil, fmt.Errorf("mark refund pending: %w", err)
		}
	}

	v.Available = true
	v.Reserved = false
	v.ReservedTo = nil
	v.ReservationDeadline = nil
	v.UpdatedAt = now
	if err := s.vehicles.Put(ctx, v); err != nil {
		if paid != nil {
			paid.Status = model.ClaimCompleted
			if uerr := s.claims.Update(ctx, paid); uerr != nil {
				s.log.Error("restore paid claim", "vehicle_id", v.ID, "memo", paid.Memo, "err", uerr)
			}
		}
		return nil, fmt.Errorf("put vehicle: %w", err)
	}
	if _, err := s.claims.DeleteByVehicle(ctx, v.ID); err != nil {
		s.log.Error("drop claims", "vehicle_id", v.ID, "err", err)
	}
	if s.sweeper != nil {
		s.sweeper.Unschedule(v.ID)
	}
	return paid, nil
}

// refund pays a REFUND_PENDING claim back to its claimant and forgets it.
// On failure the claim stays pending for RetryRefunds.
func (s *service) refund(ctx context.Context, memo uint64) error {
	unlock := s.locks.Lock("refund:" + strconv.FormatUint(memo, 10))
	defer unlock()

	claim, err := s.claims.Get(ctx, memo)
	if errors.Is(err, claimrepo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get claim: %w", err)
	}
	if claim.Status != model.ClaimRefundPending {
		return nil
	}

	idx, err := s.pay.IssueRefund(ctx, claim.Claimant, claim.Amount)
	if err != nil {
		s.log.Error("refund failed",
			"vehicle_id", claim.VehicleID,
			"recipient", claim.Claimant,
			"amount", claim.Amount,
			"memo", memo,
			"err", err,
		)
		if apperr.Code(err) == apperr.ErrPaymentFailed {
			return err
		}
		return apperr.Wrap(apperr.ErrPaymentFailed, "refund", err)
	}
	if err := s.claims.Delete(ctx, memo); err != nil && !errors.Is(err, claimrepo.ErrNotFound) {
		// the ledger has paid; a leftover claim would be refunded again
		s.log.Error("drop refunded claim", "memo", memo, "block_index", idx, "err", err)
		return fmt.Errorf("drop refunded claim: %w", err)
	}
	s.publish(ctx, eventsrepo.Event{
		Type:       eventsrepo.PaymentRefunded,
		VehicleID:  claim.VehicleID,
		Principal:  claim.Claimant,
		Memo:       claim.Memo,
		Amount:     claim.Amount,
		BlockIndex: &idx,
		OccurredAt: s.clock(),
	})
	return nil
}

func (s *service) publish(ctx context.Context, ev eventsrepo.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event", "type", ev.Type, "vehicle_id", ev.VehicleID, "err", err)
	}
}
