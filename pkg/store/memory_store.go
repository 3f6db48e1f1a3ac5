package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"sakanka/pkg/domain"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	products map[string]domain.Product
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		products: make(map[string]domain.Product),
	}
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUserByPhone(phone string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.PhoneNumber == phone {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) CreateProduct(p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func (s *MemoryStore) GetProduct(id string) (domain.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemoryStore) ListActiveProducts(limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.collect(func(p domain.Product) bool {
		return p.Status == domain.ProductActive
	})
	return capList(res, limit), nil
}

func (s *MemoryStore) SearchProducts(query, location string, limit int) ([]domain.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	location = strings.ToLower(strings.TrimSpace(location))
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.collect(func(p domain.Product) bool {
		if p.Status != domain.ProductActive {
			return false
		}
		if !strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Location), location) {
			return false
		}
		return true
	})
	return capList(res, limit), nil
}

func (s *MemoryStore) ListProductsByPhone(phone string, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.collect(func(p domain.Product) bool {
		return p.PhoneNumber == phone
	})
	return capList(res, limit), nil
}

func (s *MemoryStore) SetProductStatus(id string, status domain.ProductStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return nil
}

func (s *MemoryStore) SetProductImage(id, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	p.ImageURL = imageURL
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return nil
}

// collect returns matching products newest first. Callers hold the lock.
func (s *MemoryStore) collect(match func(domain.Product) bool) []domain.Product {
	res := make([]domain.Product, 0)
	for _, p := range s.products {
		if match(p) {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}

func capList(items []domain.Product, limit int) []domain.Product {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
