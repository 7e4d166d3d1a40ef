package claimrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

type memory struct {
	mu     sync.RWMutex
	claims map[uint64]model.ReservationClaim
}

func NewMemory() Store { return &memory{claims: make(map[uint64]model.ReservationClaim)} }

func (m *memory) Create(_ context.Context, c *model.ReservationClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[c.Memo]; ok {
		return ErrDuplicate
	}
	m.claims[c.Memo] = copyClaim(*c)
	return nil
}

func (m *memory) Get(_ context.Context, memo uint64) (*model.ReservationClaim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.claims[memo]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyClaim(c)
	return &out, nil
}

func (m *memory) Update(_ context.Context, c *model.ReservationClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[c.Memo]; !ok {
		return ErrNotFound
	}
	m.claims[c.Memo] = copyClaim(*c)
	return nil
}

func (m *memory) ActiveForVehicle(_ context.Context, vehicleID string) (*model.ReservationClaim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *model.ReservationClaim
	for _, c := range m.claims {
		if c.VehicleID != vehicleID || c.Status == model.ClaimRefundPending {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			cp := copyClaim(c)
			latest = &cp
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *memory) DeleteByVehicle(_ context.Context, vehicleID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for memo, c := range m.claims {
		if c.VehicleID == vehicleID && c.Status != model.ClaimRefundPending {
			delete(m.claims, memo)
			n++
		}
	}
	return n, nil
}

func (m *memory) Delete(_ context.Context, memo uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[memo]; !ok {
		return ErrNotFound
	}
	delete(m.claims, memo)
	return nil
}

func (m *memory) RefundsPending(_ context.Context) ([]*model.ReservationClaim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.ReservationClaim
	for _, c := range m.claims {
		if c.Status == model.ClaimRefundPending {
			cp := copyClaim(c)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Memo < out[j].Memo
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func copyClaim(c model.ReservationClaim) model.ReservationClaim {
	if c.BlockIndex != nil {
		b := *c.BlockIndex
		c.BlockIndex = &b
	}
	return c
}
