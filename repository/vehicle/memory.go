package vehiclerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/model"
)

type memory struct {
	mu   sync.RWMutex
	rows map[string]*model.Vehicle
}

func NewMemory() Store { return &memory{rows: make(map[string]*model.Vehicle)} }

func (m *memory) Get(_ context.Context, id string) (*model.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[id].Clone(), nil
}

func (m *memory) Put(_ context.Context, v *model.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[v.ID] = v.Clone()
	return nil
}

func (m *memory) Remove(_ context.Context, id string) (*model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	delete(m.rows, id)
	return v, nil
}

func (m *memory) ListAll(_ context.Context) ([]model.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Vehicle, 0, len(m.rows))
	for _, v := range m.rows {
		out = append(out, *v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
