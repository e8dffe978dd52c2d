package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/pubsub"
)

// MemoryUsers is an in-memory domain.UserRepository.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]domain.User)}
}

func (m *MemoryUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *MemoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryUsers) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	u := *user
	m.users[u.ID] = u
	return &u, nil
}

// MemorySessions is an in-memory domain.SessionRepository.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	// FindErr, when set, is returned by FindByID.
	FindErr error
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]domain.Session)}
}

func (m *MemorySessions) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemorySessions) FindByID(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *MemorySessions) UpdateExpiry(_ context.Context, id string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.ExpiresAt = expiresAt
	m.sessions[id] = s
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryProfiles is an in-memory domain.ProfileRepository that counts writes.
type MemoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	// Err, when set, is returned by every method.
	Err          error
	Saves        int
	AvatarSyncs  int
	AvatarWrites int
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]domain.Profile)}
}

// Put stores a row directly.
func (m *MemoryProfiles) Put(p domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

// Get returns a stored row for assertions.
func (m *MemoryProfiles) Get(userID string) (domain.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	return p, ok
}

func (m *MemoryProfiles) FindByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *MemoryProfiles) Ensure(_ context.Context, userID string, fullName *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		m.profiles[userID] = domain.Profile{UserID: userID, FullName: fullName}
		return nil
	}
	if p.FullName == nil {
		p.FullName = fullName
		m.profiles[userID] = p
	}
	return nil
}

func (m *MemoryProfiles) Save(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Saves++
	now := time.Now()
	stored := *p
	stored.UpdatedAt = &now
	m.profiles[p.UserID] = stored
	return nil
}

func (m *MemoryProfiles) SetAvatarIfEmpty(_ context.Context, userID, avatarURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	m.AvatarSyncs++
	p := m.profiles[userID]
	if p.Avatar() != "" || avatarURL == "" {
		return false, nil
	}
	p.UserID = userID
	p.AvatarURL = &avatarURL
	m.profiles[userID] = p
	m.AvatarWrites++
	return true, nil
}

// MemoryObjects is an in-memory domain.ObjectRepository.
type MemoryObjects struct {
	mu      sync.Mutex
	objects map[string]domain.Object
	// UpsertErr, when set, is returned by Upsert.
	UpsertErr error
}

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{objects: make(map[string]domain.Object)}
}

func (m *MemoryObjects) Upsert(_ context.Context, o *domain.Object) (*domain.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	stored := *o
	now := time.Now().UTC()
	if prev, ok := m.objects[o.Key()]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.objects[o.Key()] = stored
	return &stored, nil
}

func (m *MemoryObjects) Find(_ context.Context, bucket, path string) (*domain.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[bucket+"/"+path]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &o, nil
}

func (m *MemoryObjects) Delete(_ context.Context, bucket, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+path)
	return nil
}

// Keys lists stored object keys in order.
func (m *MemoryObjects) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordingSender is a domain.EmailSender that keeps sent mail.
type RecordingSender struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

// SentEmail is one message captured by RecordingSender.
type SentEmail struct {
	To, Subject, HTMLBody string
}

func (r *RecordingSender) Send(to, subject, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, SentEmail{To: to, Subject: subject, HTMLBody: htmlBody})
	return nil
}

// Last returns the most recent message.
func (r *RecordingSender) Last() SentEmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return SentEmail{}
	}
	return r.Sent[len(r.Sent)-1]
}

// NopPublisher is a pubsub.Publisher that drops every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, pubsub.Message) error { return nil }
func (NopPublisher) Close() error                                 { return nil }
