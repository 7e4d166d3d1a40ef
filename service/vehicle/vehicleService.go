package vehiclesvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	eventsrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/events"
	vehiclerepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/address"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/keylock"
)

type Service interface {
	Add(ctx context.Context, creator string, p model.VehiclePayload) (*model.Vehicle, error)
	Get(ctx context.Context, id string) (*model.Vehicle, error)
	List(ctx context.Context) ([]model.Vehicle, error)
	ByMaxPrice(ctx context.Context, maxPrice uint64) ([]model.Vehicle, error)
	ByModel(ctx context.Context, m string) ([]model.Vehicle, error)
	ByCompany(ctx context.Context, company string) ([]model.Vehicle, error)
	ByTopSpeed(ctx context.Context, topSpeed string) ([]model.Vehicle, error)
	// Delete removes a vehicle its caller created. Reserved vehicles cannot be deleted.
	Delete(ctx context.Context, id, caller string) (string, error)

	ReservationFee() uint64
	ServiceAddress() address.Address
	AddressOf(principal string) (address.Address, error)
}

type service struct {
	store  vehiclerepo.Store
	events eventsrepo.Publisher
	locks  *keylock.Locker
	v      *validator.Validate
	fee    uint64
	self   address.Address
	now    func() time.Time
	log    *slog.Logger
}

type Config struct {
	ReservationFee uint64
	ServiceAddress address.Address
	// Locks must be the same locker the reservation service uses.
	Locks *keylock.Locker
}

func New(store vehiclerepo.Store, events eventsrepo.Publisher, cfg Config, log *slog.Logger) Service {
	if cfg.Locks == nil {
		cfg.Locks = keylock.New()
	}
	if events == nil {
		events = eventsrepo.Nop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{
		store:  store,
		events: events,
		locks:  cfg.Locks,
		v:      validator.New(),
		fee:    cfg.ReservationFee,
		self:   cfg.ServiceAddress,
		now:    time.Now,
		log:    log,
	}
}

func (s *service) Add(ctx context.Context, creator string, p model.VehiclePayload) (*model.Vehicle, error) {
	if creator == "" {
		return nil, apperr.Make(apperr.ErrInvalidPayload, "creator is required")
	}
	if err := s.v.Struct(p); err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidPayload, "vehicle payload", err)
	}

	now := s.now().UTC()
	v := &model.Vehicle{
		ID:             uuid.NewString(),
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		Model:          p.Model,
		Price:          p.Price,
		EngineCapacity: p.EngineCapacity,
		TopSpeed:       p.TopSpeed,
		CompanyName:    p.CompanyName,
		Creator:        creator,
		Available:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Put(ctx, v); err != nil {
		return nil, fmt.Errorf("put vehicle: %w", err)
	}

	s.publish(ctx, eventsrepo.Event{Type: eventsrepo.VehicleAdded, VehicleID: v.ID, Principal: creator, Amount: v.Price, OccurredAt: now})
	return v, nil
}

func (s *service) Get(ctx context.Context, id string) (*model.Vehicle, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.Make(apperr.ErrNotFound, fmt.Sprintf("vehicle with id=%s not found", id))
	}
	return v, nil
}

func (s *service) List(ctx context.Context) ([]model.Vehicle, error) { return s.store.ListAll(ctx) }

func (s *service) ByMaxPrice(ctx context.Context, maxPrice uint64) ([]model.Vehicle, error) {
	return s.filter(ctx, func(v *model.Vehicle) bool { return v.Price <= maxPrice })
}

func (s *service) ByModel(ctx context.Context, m string) ([]model.Vehicle, error) {
	return s.filter(ctx, func(v *model.Vehicle) bool { return strings.EqualFold(v.Model, m) })
}

func (s *service) ByCompany(ctx context.Context, company string) ([]model.Vehicle, error) {
	return s.filter(ctx, func(v *model.Vehicle) bool { return strings.EqualFold(v.CompanyName, company) })
}

func (s *service) ByTopSpeed(ctx context.Context, topSpeed string) ([]model.Vehicle, error) {
	return s.filter(ctx, func(v *model.Vehicle) bool { return strings.EqualFold(v.TopSpeed, topSpeed) })
}

func (s *service) filter(ctx context.Context, keep func(*model.Vehicle) bool) ([]model.Vehicle, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Vehicle, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id, caller string) (string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	v, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if v.Creator != caller {
		return "", apperr.Make(apperr.ErrNotOwner, "only creator can delete vehicle")
	}
	if v.Reserved {
		return "", apperr.Make(apperr.ErrBooked, fmt.Sprintf("vehicle with id %s is currently booked", id))
	}

	if _, err := s.store.Remove(ctx, id); err != nil {
		return "", fmt.Errorf("remove vehicle: %w", err)
	}
	s.publish(ctx, eventsrepo.Event{Type: eventsrepo.VehicleDeleted, VehicleID: id, Principal: caller, OccurredAt: s.now().UTC()})
	s.log.Info("vehicle deleted", "vehicle_id", id, "creator", caller)
	return id, nil
}

func (s *service) ReservationFee() uint64          { return s.fee }
func (s *service) ServiceAddress() address.Address { return s.self }

func (s *service) AddressOf(principal string) (address.Address, error) {
	a, err := address.FromPrincipal(principal, address.DefaultSubaccount)
	if err != nil {
		return address.Address{}, apperr.Wrap(apperr.ErrInvalidPayload, "principal", err)
	}
	return a, nil
}

func (s *service) publish(ctx context.Context, ev eventsrepo.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish event", "type", ev.Type, "vehicle_id", ev.VehicleID, "err", err)
	}
}
