package memory

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/code-payments/code-vault/pkg/code/data/vault"
)

type store struct {
	mu      sync.Mutex
	records []*vault.Record
	last    uint64
}

// New returns a new in memory vault.Store
func New() vault.Store {
	return &store{}
}

// Create implements vault.Store.Create
func (s *store) Create(_ context.Context, data *vault.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByVault(data.Vault); item != nil {
		return vault.ErrAlreadyInitialized
	}

	s.last++
	data.Id = s.last
	data.TotalDeposited = 0
	data.CreatedAt = time.Now()
	data.LastUpdatedAt = data.CreatedAt

	s.records = append(s.records, data.Clone())

	return nil
}

// Get implements vault.Store.Get
func (s *store) Get(_ context.Context, address string) (*vault.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByVault(address); item != nil {
		return item.Clone(), nil
	}
	return nil, vault.ErrNotFound
}

// AddToTotalDeposited implements vault.Store.AddToTotalDeposited
func (s *store) AddToTotalDeposited(_ context.Context, address string, amount uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findByVault(address)
	if item == nil {
		return 0, vault.ErrNotFound
	}

	if item.TotalDeposited > math.MaxUint64-amount {
		return 0, vault.ErrOverflow
	}

	item.TotalDeposited += amount
	item.LastUpdatedAt = time.Now()

	return item.TotalDeposited, nil
}

// CountAll implements vault.Store.CountAll
func (s *store) CountAll(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(len(s.records)), nil
}

func (s *store) findByVault(address string) *vault.Record {
	for _, item := range s.records {
		if item.Vault == address {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
