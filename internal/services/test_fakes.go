package services

import (
	"context"
	"sync"
	"time"

	"github.com/FiifiQwontwo/PhotoIsa/internal/models"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// rules as the database constraints.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User

	failCreate error
	failUpdate error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicateUser
		}
	}
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByVerificationToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token == "" {
		return nil, repository.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for id := uint(1); id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// fakeTokenStore is an in-memory TokenStore recording TTLs.
type fakeTokenStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeTokenStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return v, nil
}

func (s *fakeTokenStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.ttls, key)
	return nil
}

// fakeMailer records dispatched verification emails.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error
}

type sentMail struct {
	to        string
	firstName string
	verifyURL string
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, toEmail, firstName, verifyURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, sentMail{to: toEmail, firstName: firstName, verifyURL: verifyURL})
	return nil
}
