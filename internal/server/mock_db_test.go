package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

const testJWTSecret = "test-secret-key-0123456789"

// mockDB is an in-memory DBClient.
type mockDB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*db.User
	resumes map[uuid.UUID]*db.Resume
	clock   time.Time

	failUpdatePassword bool
	closed             bool
}

func newMockDB() *mockDB {
	return &mockDB{
		users:   make(map[uuid.UUID]*db.User),
		resumes: make(map[uuid.UUID]*db.Resume),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so updated_at ordering is deterministic.
func (m *mockDB) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *mockDB) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	id := uuid.New()
	m.users[id] = &db.User{
		ID:        id,
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

func (m *mockDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *mockDB) UpdateUser(_ context.Context, u *db.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.ID]
	if !ok {
		return errors.New("user not found")
	}
	stored.Name, stored.Phone = u.Name, u.Phone
	stored.UpdatedAt = m.tick()
	return nil
}

func (m *mockDB) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdatePassword {
		return errors.New("connection reset")
	}
	stored, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	stored.PasswordHash, stored.PasswordSet = hash, true
	return nil
}

func (m *mockDB) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return errors.New("user not found")
	}
	delete(m.users, id)
	for rid, r := range m.resumes {
		if r.UserID == id {
			delete(m.resumes, rid)
		}
	}
	return nil
}

func (m *mockDB) CreateResume(_ context.Context, userID uuid.UUID, title string, doc *types.Document) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	r := &db.Resume{ID: uuid.New(), UserID: userID, Title: title, Content: doc.Clone(), CreatedAt: now, UpdatedAt: now}
	m.resumes[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *mockDB) GetResume(_ context.Context, userID, id uuid.UUID) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockDB) ListResumes(_ context.Context, userID uuid.UUID) ([]types.ResumeSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.ResumeSummary
	for _, r := range m.resumes {
		if r.UserID != userID {
			continue
		}
		out = append(out, types.ResumeSummary{
			ID:        r.ID,
			Title:     r.Title,
			FullName:  r.Content.PersonalInfo.FullName,
			UpdatedAt: r.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockDB) UpdateResume(_ context.Context, userID, id uuid.UUID, title *string, doc *types.Document) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	if title != nil {
		r.Title = *title
	}
	if doc != nil {
		r.Content = doc.Clone()
	}
	r.UpdatedAt = m.tick()
	cp := *r
	return &cp, nil
}

func (m *mockDB) DeleteResume(_ context.Context, userID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(m.resumes, id)
	return true, nil
}

func (m *mockDB) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

var _ DBClient = (*mockDB)(nil)

func testJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: 24,
		Issuer:          config.DefaultJWTIssuer,
	})
}

func testPasswordConfig() *config.PasswordConfig {
	cfg, err := config.NewPasswordConfigWithCost(config.MinBcryptCost, "")
	if err != nil {
		panic(err)
	}
	return cfg
}
