package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/contact-verifier/internal/domain"
)

// CustomerStore is an in-memory customer store with the same semantics as the
// DynamoDB repo. It backs local runs (STORE_DRIVER=memory) and pipeline tests.
type CustomerStore struct {
	mu         sync.Mutex
	customers  map[string]domain.Customer
	readErr    error
	writeErr   error
	bulkWrites int
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: make(map[string]domain.Customer)}
}

// WithReadError makes subsequent streams fail after yielding nothing.
func (s *CustomerStore) WithReadError(err error) *CustomerStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
	return s
}

// WithWriteError makes subsequent bulk writes fail.
func (s *CustomerStore) WithWriteError(err error) *CustomerStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	return s
}

// BulkWrites reports how many non-empty bulk writes were submitted.
func (s *CustomerStore) BulkWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkWrites
}

func (s *CustomerStore) Put(_ context.Context, c *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Normalize()
	s.customers[c.CustomerID] = *c
	return nil
}

func (s *CustomerStore) Get(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer not found: %w", domain.ErrNotFound)
	}
	return &c, nil
}

// StreamUnverified yields identifiers from a snapshot taken when iteration starts,
// ordered by customer id.
func (s *CustomerStore) StreamUnverified(_ context.Context, ch domain.Channel, limit int) iter.Seq2[string, error] {
	if limit <= 0 || limit > domain.MaxBatchSize {
		limit = domain.MaxBatchSize
	}
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		if s.readErr != nil {
			err := s.readErr
			s.mu.Unlock()
			yield("", err)
			return
		}
		ids := make([]string, 0, len(s.customers))
		for id := range s.customers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var idents []string
		for _, id := range ids {
			c := s.customers[id]
			ident, ok := c.Identifier(ch)
			if !ok || c.Status(ch) != domain.StatusUnknown {
				continue
			}
			idents = append(idents, ident)
			if len(idents) == limit {
				break
			}
		}
		s.mu.Unlock()

		for _, ident := range idents {
			if !yield(ident, nil) {
				return
			}
		}
	}
}

func (s *CustomerStore) BulkSetValidationStatus(_ context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error) {
	report := domain.ReconcileReport{Channel: ch, Requested: len(results)}
	if len(results) == 0 {
		return report, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return report, s.writeErr
	}
	s.bulkWrites++
	now := time.Now().UTC()
	seen := make(map[string]bool, len(results))
	latest := make(map[string]domain.ValidationStatus, len(results))
	for _, res := range results {
		latest[res.Identifier] = res.Status
	}
	for _, res := range results {
		if seen[res.Identifier] {
			continue
		}
		seen[res.Identifier] = true
		matched := false
		for id, c := range s.customers {
			if ident, ok := c.Identifier(ch); !ok || ident != res.Identifier {
				continue
			}
			c.SetStatus(ch, latest[res.Identifier])
			c.UpdatedAt = now
			s.customers[id] = c
			report.Applied++
			matched = true
		}
		if !matched {
			report.Unmatched++
		}
	}
	return report, nil
}

func (s *CustomerStore) SetDoNotDisturb(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	}
	c.DoNotDisturb = domain.DoNotDisturbYes
	c.UpdatedAt = time.Now().UTC()
	s.customers[customerID] = c
	return nil
}
