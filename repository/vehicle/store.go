package vehiclerepo

import (
	"context"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

// Store is the ordered key-value view of the inventory.
// Get and Remove return nil, nil when the id is unknown.
type Store interface {
	Get(ctx context.Context, id string) (*model.Vehicle, error)
	Put(ctx context.Context, v *model.Vehicle) error
	Remove(ctx context.Context, id string) (*model.Vehicle, error)
	ListAll(ctx context.Context) ([]model.Vehicle, error)
}
