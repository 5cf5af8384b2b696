package security

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

var (
	ErrUserNotFound     = errors.New("security: user not found")
	ErrUsernameRequired = errors.New("security: username is required")
)

// User is an account a job can run as.
type User struct {
	Username string
	Roles    []string
}

// HasRole reports whether the user holds the role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// UserProvider resolves users by username.
type UserProvider interface {
	LoadUserByUsername(ctx context.Context, username string) (*User, error)
}

// UsernamePasswordToken is the authentication installed for a job user.
type UsernamePasswordToken struct {
	User        *User
	ProviderKey string
	Roles       []string
}

// NewUsernamePasswordToken builds an authenticated token carrying the user roles.
func NewUsernamePasswordToken(user *User, providerKey string) *UsernamePasswordToken {
	token := &UsernamePasswordToken{User: user, ProviderKey: providerKey}
	if user != nil {
		token.Roles = slices.Clone(user.Roles)
	}
	return token
}

// Username returns the token user name.
func (t *UsernamePasswordToken) Username() string {
	if t == nil || t.User == nil {
		return ""
	}
	return t.User.Username
}

// TokenStorage holds the token of one worker. Each batch step owns its own
// storage so concurrent workers never share authentication.
type TokenStorage interface {
	Token() *UsernamePasswordToken
	SetToken(token *UsernamePasswordToken)
}

// MemoryTokenStorage is a mutex guarded TokenStorage.
type MemoryTokenStorage struct {
	mu    sync.RWMutex
	token *UsernamePasswordToken
}

// NewTokenStorage returns an empty storage.
func NewTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{}
}

func (s *MemoryTokenStorage) Token() *UsernamePasswordToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStorage) SetToken(token *UsernamePasswordToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// MemoryUserProvider serves users registered in memory, typically loaded
// from configuration.
type MemoryUserProvider struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryUserProvider registers the given users.
func NewMemoryUserProvider(users ...*User) *MemoryUserProvider {
	provider := &MemoryUserProvider{users: make(map[string]*User, len(users))}
	for _, user := range users {
		provider.Add(user)
	}
	return provider
}

// Add registers or replaces a user.
func (p *MemoryUserProvider) Add(user *User) {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return
	}
	copied := &User{Username: strings.TrimSpace(user.Username), Roles: slices.Clone(user.Roles)}
	p.mu.Lock()
	p.users[copied.Username] = copied
	p.mu.Unlock()
}

func (p *MemoryUserProvider) LoadUserByUsername(_ context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &User{Username: user.Username, Roles: slices.Clone(user.Roles)}, nil
}

type tokenContextKey struct{}

// ContextWithToken attaches the token to the context.
func ContextWithToken(ctx context.Context, token *UsernamePasswordToken) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the token attached to the context, if any.
func TokenFromContext(ctx context.Context) (*UsernamePasswordToken, bool) {
	if ctx == nil {
		return nil, false
	}
	token, ok := ctx.Value(tokenContextKey{}).(*UsernamePasswordToken)
	return token, ok && token != nil
}
