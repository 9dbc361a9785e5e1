package store

import "sort"

// MockRepository is an in-memory implementation of Repository for testing.
type MockRepository struct {
	batches map[string]*Batch

	// Hooks for test assertions
	SaveCalled bool
	LastSaved  *Batch
	SavedCount int

	// Error injection for testing error paths
	SaveErr error
	GetErr  error
	ListErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{batches: make(map[string]*Batch)}
}

func (m *MockRepository) Save(batch *Batch) error {
	m.SaveCalled = true
	if m.SaveErr != nil {
		return m.SaveErr
	}
	copied := *batch
	m.batches[batch.ID] = &copied
	m.LastSaved = &copied
	m.SavedCount++
	return nil
}

func (m *MockRepository) Get(id string) (*Batch, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	batch, ok := m.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	copied := *batch
	return &copied, nil
}

func (m *MockRepository) ListUnreconciled() ([]*Batch, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var open []*Batch
	for _, batch := range m.batches {
		if !batch.Reconciled() {
			copied := *batch
			open = append(open, &copied)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })
	return open, nil
}

func (m *MockRepository) Close() error { return nil }
