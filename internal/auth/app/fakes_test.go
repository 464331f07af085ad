package app_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
)

var errDatabaseOperation = errors.New("database error")

// memoryUsers - потокобезопасное хранилище пользователей в памяти с семантикой настоящих адаптеров.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*entities.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*entities.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, services.ErrEmailAlreadyExists
		}
	}
	m.nextID++
	now := time.Now()
	created := *user
	created.ID = "user-" + strconv.Itoa(m.nextID)
	created.CreatedAt, created.UpdatedAt = now, now
	m.users[created.ID] = &created

	out := created
	return &out, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryUsers) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entities.ErrUserNotFound
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	return nil
}

func (m *memoryUsers) FindByResetToken(_ context.Context, token string, now time.Time) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ResetPasswordToken == token && u.HasPendingReset(now) {
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memoryUsers) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ResetPasswordToken == token && u.HasPendingReset(now) {
			u.PasswordHash = passwordHash
			u.ResetPasswordToken = ""
			u.ResetPasswordExpires = nil
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// memoryNotes хранит только количество заметок на владельца.
type memoryNotes struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemoryNotes() *memoryNotes {
	return &memoryNotes{counts: make(map[string]int64)}
}

func (n *memoryNotes) add(ownerID string, count int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts[ownerID] += count
}

func (n *memoryNotes) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[ownerID], nil
}

func (n *memoryNotes) DeleteAllByOwner(_ context.Context, ownerID string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	deleted := n.counts[ownerID]
	delete(n.counts, ownerID)
	return deleted, nil
}

type sentEmail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (r *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (r *recordingMailer) last() (sentEmail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sentEmail{}, false
	}
	return r.sent[len(r.sent)-1], true
}

// mockUserRepository нужен там, где надо смоделировать сбой хранилища.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return m.Called(ctx, id, token, expires).Error(0)
}

func (m *mockUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entities.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*entities.User, error) {
	args := m.Called(ctx, token, passwordHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockOwnedNotes struct {
	mock.Mock
}

func (m *mockOwnedNotes) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOwnedNotes) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
