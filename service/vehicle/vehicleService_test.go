package vehiclesvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
	eventsrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/events"
	vehiclerepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
	vehiclesvc "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/vehicle"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/address"
)

const (
	creator  = "2vxsx-fae"
	stranger = "aaaaa-aa"
)

type storeMock struct {
	getFn    func(ctx context.Context, id string) (*model.Vehicle, error)
	putFn    func(ctx context.Context, v *model.Vehicle) error
	removeFn func(ctx context.Context, id string) (*model.Vehicle, error)
	listFn   func(ctx context.Context) ([]model.Vehicle, error)
}

func (m *storeMock) Get(ctx context.Context, id string) (*model.Vehicle, error) { return m.getFn(ctx, id) }
func (m *storeMock) Put(ctx context.Context, v *model.Vehicle) error            { return m.putFn(ctx, v) }
func (m *storeMock) Remove(ctx context.Context, id string) (*model.Vehicle, error) {
	return m.removeFn(ctx, id)
}
func (m *storeMock) ListAll(ctx context.Context) ([]model.Vehicle, error) { return m.listFn(ctx) }

func payload(name, m, company, speed string, price uint64) model.VehiclePayload {
	return model.VehiclePayload{
		Name:           name,
		ImageURL:       "https://img.example.com/" + name + ".png",
		Model:          m,
		Price:          price,
		EngineCapacity: "2.0L",
		TopSpeed:       speed,
		CompanyName:    company,
	}
}

func newSvc(store vehiclerepo.Store, events eventsrepo.Publisher) vehiclesvc.Service {
	return vehiclesvc.New(store, events, vehiclesvc.Config{ReservationFee: 25, ServiceAddress: address.Address{9}}, nil)
}

func TestAdd_Validation(t *testing.T) {
	s := newSvc(vehiclerepo.NewMemory(), nil)
	ctx := context.Background()

	_, err := s.Add(ctx, creator, payload("", "X5", "BMW", "250", 10))
	require.Equal(t, apperr.ErrInvalidPayload, apperr.Code(err))

	p := payload("x5", "X5", "BMW", "250", 10)
	p.ImageURL = "not a url"
	_, err = s.Add(ctx, creator, p)
	require.Equal(t, apperr.ErrInvalidPayload, apperr.Code(err))

	_, err = s.Add(ctx, creator, payload("x5", "X5", "BMW", "250", 0))
	require.Equal(t, apperr.ErrInvalidPayload, apperr.Code(err))

	_, err = s.Add(ctx, "", payload("x5", "X5", "BMW", "250", 10))
	require.Equal(t, apperr.ErrInvalidPayload, apperr.Code(err))
}

func TestAdd_Success(t *testing.T) {
	rec := &eventsrepo.Recorder{}
	s := newSvc(vehiclerepo.NewMemory(), rec)
	ctx := context.Background()

	v, err := s.Add(ctx, creator, payload("x5", "X5", "BMW", "250", 10))
	require.NoError(t, err)
	require.NotEmpty(t, v.ID)
	require.True(t, v.Available)
	require.False(t, v.Reserved)
	require.Equal(t, creator, v.Creator)
	require.Equal(t, model.StateAvailable, v.State())

	got, err := s.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, v.ID, got.ID)
	require.Equal(t, []eventsrepo.Type{eventsrepo.VehicleAdded}, rec.Types())
}

func TestAdd_StoreError(t *testing.T) {
	boom := errors.New("db down")
	s := newSvc(&storeMock{putFn: func(context.Context, *model.Vehicle) error { return boom }}, nil)

	_, err := s.Add(context.Background(), creator, payload("x5", "X5", "BMW", "250", 10))
	require.ErrorIs(t, err, boom)
}

func TestGet_NotFound(t *testing.T) {
	s := newSvc(vehiclerepo.NewMemory(), nil)
	_, err := s.Get(context.Background(), "nope")
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

func TestFilters(t *testing.T) {
	s := newSvc(vehiclerepo.NewMemory(), nil)
	ctx := context.Background()

	for _, p := range []model.VehiclePayload{
		payload("a", "Model S", "Tesla", "250 km/h", 900),
		payload("b", "model 3", "TESLA", "225 km/h", 400),
		payload("c", "Civic", "Honda", "200 km/h", 200),
	} {
		_, err := s.Add(ctx, creator, p)
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	cheap, err := s.ByMaxPrice(ctx, 400)
	require.NoError(t, err)
	require.Len(t, cheap, 2)

	byModel, err := s.ByModel(ctx, "MODEL S")
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	require.Equal(t, "a", byModel[0].Name)

	byCompany, err := s.ByCompany(ctx, "tesla")
	require.NoError(t, err)
	require.Len(t, byCompany, 2)

	bySpeed, err := s.ByTopSpeed(ctx, "200 KM/H")
	require.NoError(t, err)
	require.Len(t, bySpeed, 1)
	require.Equal(t, "c", bySpeed[0].Name)

	none, err := s.ByModel(ctx, "Corolla")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestDelete(t *testing.T) {
	store := vehiclerepo.NewMemory()
	s := newSvc(store, nil)
	ctx := context.Background()

	_, err := s.Delete(ctx, "missing", creator)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))

	v, err := s.Add(ctx, creator, payload("x5", "X5", "BMW", "250", 10))
	require.NoError(t, err)

	_, err = s.Delete(ctx, v.ID, stranger)
	require.Equal(t, apperr.ErrNotOwner, apperr.Code(err))

	holder := stranger
	deadline := time.Now().Add(time.Minute)
	reserved := v.Clone()
	reserved.Available = false
	reserved.Reserved = true
	reserved.ReservedTo = &holder
	reserved.ReservationDeadline = &deadline
	require.NoError(t, store.Put(ctx, reserved))

	_, err = s.Delete(ctx, v.ID, creator)
	require.Equal(t, apperr.ErrBooked, apperr.Code(err))

	require.NoError(t, store.Put(ctx, v))
	id, err := s.Delete(ctx, v.ID, creator)
	require.NoError(t, err)
	require.Equal(t, v.ID, id)

	_, err = s.Get(ctx, v.ID)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

func TestAddresses(t *testing.T) {
	s := newSvc(vehiclerepo.NewMemory(), nil)

	require.Equal(t, uint64(25), s.ReservationFee())
	require.Equal(t, address.Address{9}, s.ServiceAddress())

	a, err := s.AddressOf(creator)
	require.NoError(t, err)
	require.Equal(t, "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79", a.Hex())

	_, err = s.AddressOf("bogus")
	require.Equal(t, apperr.ErrInvalidPayload, apperr.Code(err))
}
