package claimrepo

import (
	"context"
	"errors"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

var (
	ErrNotFound  = errors.New("claim not found")
	ErrDuplicate = errors.New("claim already exists")
)

type Store interface {
	Create(ctx context.Context, c *model.ReservationClaim) error
	Get(ctx context.Context, memo uint64) (*model.ReservationClaim, error)
	Update(ctx context.Context, c *model.ReservationClaim) error
	Delete(ctx context.Context, memo uint64) error
	// ActiveForVehicle returns the most recent claim of a vehicle, or ErrNotFound.
	// Claims awaiting a refund are not active.
	ActiveForVehicle(ctx context.Context, vehicleID string) (*model.ReservationClaim, error)
	// DeleteByVehicle drops the claims of a vehicle, keeping those awaiting a refund.
	DeleteByVehicle(ctx context.Context, vehicleID string) (int64, error)
	// RefundsPending lists claims awaiting a refund, oldest first.
	RefundsPending(ctx context.Context) ([]*model.ReservationClaim, error)
}
