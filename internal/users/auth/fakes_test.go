// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/wanderly/internal/platform/apperr"
	"github.com/taibuivan/wanderly/internal/platform/sec"
	"github.com/taibuivan/wanderly/internal/users/auth"
	"github.com/taibuivan/wanderly/pkg/pagination"
	"github.com/taibuivan/wanderly/pkg/uuid"
)

// # In-Memory Repositories

type memoryUsers struct {
	mu    sync.Mutex
	order []string
	rows  map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: map[string]*auth.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rows {
		if existing.Email == user.Email {
			return apperr.UserAlreadyExists("User with this email already exists")
		}
		if user.PhoneNumber != nil && existing.PhoneNumber != nil && *existing.PhoneNumber == *user.PhoneNumber {
			return apperr.UserAlreadyExists("User with this phone number already exists")
		}
	}

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	m.rows[user.ID] = &stored
	m.order = append(m.order, user.ID)
	return nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.rows[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.UserNotFound()
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.rows {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.UserNotFound()
}

func (m *memoryUsers) update(id string, apply func(*auth.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.rows[id]
	if !ok {
		return apperr.UserNotFound()
	}
	apply(user)
	user.UpdatedAt = time.Now()
	return nil
}

func (m *memoryUsers) MarkVerified(_ context.Context, id string) error {
	return m.update(id, func(user *auth.User) { user.IsVerified = true })
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return m.update(id, func(user *auth.User) { user.PasswordHash = passwordHash })
}

func (m *memoryUsers) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return apperr.UserNotFound()
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryUsers) List(_ context.Context, params pagination.Params) ([]*auth.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := make([]*auth.User, 0, len(m.order))
	for _, id := range m.order {
		if user, ok := m.rows[id]; ok {
			copied := *user
			live = append(live, &copied)
		}
	}

	start := min(params.Offset(), len(live))
	end := min(start+params.Limit, len(live))
	return live[start:end], len(live), nil
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryRoles struct {
	mu    sync.Mutex
	rows  map[sec.UserRole]*auth.Role
	calls int
}

func newMemoryRoles() *memoryRoles {
	return &memoryRoles{rows: map[sec.UserRole]*auth.Role{}}
}

func (m *memoryRoles) Ensure(_ context.Context, name sec.UserRole) (*auth.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if role, ok := m.rows[name]; ok {
		return role, nil
	}

	role := &auth.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	m.rows[name] = role
	return role, nil
}

type memoryRevocations struct {
	mu   sync.Mutex
	jtis map[string]time.Time
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{jtis: map[string]time.Time{}}
}

func (m *memoryRevocations) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

// # Notifier Mock

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendVerificationEmail(ctx context.Context, to, fullName, token string) error {
	return m.Called(ctx, to, fullName, token).Error(0)
}

func (m *mockNotifier) SendPasswordResetEmail(ctx context.Context, to, fullName, token string) error {
	return m.Called(ctx, to, fullName, token).Error(0)
}

// # Event Recorder

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) AuthEvent(event, outcome string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event+":"+outcome)
}

// # Fixture

type fixture struct {
	service     *auth.Service
	users       *memoryUsers
	roles       *memoryRoles
	revocations *memoryRevocations
	notifier    *mockNotifier
	tokens      *sec.TokenService
	hasher      *sec.PasswordHasher
	events      *eventLog
}

func newFixture(t *testing.T, options auth.Options) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:          "fixture-secret-0123456789abcdefghij",
		Issuer:          "wanderly.test",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      48 * time.Hour,
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
	})
	require.NoError(t, err)

	f := &fixture{
		users:       newMemoryUsers(),
		roles:       newMemoryRoles(),
		revocations: newMemoryRevocations(),
		notifier:    &mockNotifier{},
		tokens:      tokens,
		hasher:      sec.NewPasswordHasher(bcrypt.MinCost),
		events:      &eventLog{},
	}

	f.service = auth.NewService(auth.Dependencies{
		Users:       f.users,
		Roles:       f.roles,
		Revocations: f.revocations,
		Hasher:      f.hasher,
		Tokens:      f.tokens,
		Notifier:    f.notifier,
		Events:      f.events,
	}, options)

	return f
}

// captureVerification expects one verification email and stores its token.
func (f *fixture) captureVerification(email string, token *string) {
	f.notifier.On("SendVerificationEmail", mock.Anything, email, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *token = args.String(3) }).
		Return(nil).Once()
}

// captureReset expects one reset email and stores its token.
func (f *fixture) captureReset(email string, token *string) {
	f.notifier.On("SendPasswordResetEmail", mock.Anything, email, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *token = args.String(3) }).
		Return(nil).Once()
}

// seedAdmin stores a verified admin account directly in the repository.
func (f *fixture) seedAdmin(t *testing.T, email, password string) *auth.User {
	t.Helper()

	role, err := f.roles.Ensure(context.Background(), sec.RoleAdmin)
	require.NoError(t, err)

	hash, err := f.hasher.HashPassword(password)
	require.NoError(t, err)

	admin := &auth.User{
		ID:           uuid.New(),
		RoleID:       role.ID,
		Role:         sec.RoleAdmin,
		FullName:     "Ada Admin",
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
	}
	require.NoError(t, f.users.Create(context.Background(), admin))
	return admin
}
