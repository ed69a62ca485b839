package session

import "sync"

// UserProfile holds the signed-in user's profile as returned by the backend.
type UserProfile struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Tokens holds the bearer token pair issued at sign-in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session 은 브라우저 컨텍스트당 정확히 하나 존재하는 로그인 상태다.
// 로그인 성공 시 생성되고, 토큰 갱신/프로필 수정 시 갱신되며,
// 로그아웃 또는 인증 실패(401) 시 비워진다.
type Session struct {
	User   *UserProfile `json:"user,omitempty"`
	Tokens *Tokens      `json:"tokens,omitempty"`
}

// Authenticated reports whether the session carries a usable access token.
func (s Session) Authenticated() bool {
	return s.Tokens != nil && s.Tokens.AccessToken != ""
}

// UserID returns the signed-in user's id, or "" when signed out.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Store 는 단일 세션 슬롯에 대한 읽기/쓰기와 변경 구독을 제공한다.
// 원본의 ambient lookup 을 대체하는 주입식 인터페이스다: 파이프라인과
// 채팅 채널은 생성 시점에 Store 를 전달받고, 반응형 소비자는 Subscribe 로
// 변경 알림을 받는다.
type Store interface {
	// Load returns the current session; ok is false when the slot is empty.
	Load() (s Session, ok bool)
	// Save replaces the slot with the given session and notifies subscribers.
	Save(s Session) error
	// Clear empties the slot and notifies subscribers. Clearing an already
	// empty slot is a no-op and does not notify.
	Clear() error
	// Subscribe registers a change listener and returns an unsubscribe func.
	// Listeners are invoked synchronously after each Save/Clear.
	Subscribe(fn func(s Session, ok bool)) (unsubscribe func())
}

// subscribers is the shared notify fan-out used by both store implementations.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Session, bool)
}

func (n *subscribers) add(fn func(Session, bool)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fns == nil {
		n.fns = make(map[int]func(Session, bool))
	}
	id := n.next
	n.next++
	n.fns[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.fns, id)
	}
}

func (n *subscribers) notify(s Session, ok bool) {
	n.mu.Lock()
	fns := make([]func(Session, bool), 0, len(n.fns))
	for _, fn := range n.fns {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(s, ok)
	}
}

// MemoryStore keeps the session in memory only. Used by tests and by hosts
// that manage persistence themselves.
type MemoryStore struct {
	mu   sync.RWMutex
	s    Session
	ok   bool
	subs subscribers
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, m.ok
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	m.s = s
	m.ok = true
	m.mu.Unlock()
	m.subs.notify(s, true)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	wasSet := m.ok
	m.s = Session{}
	m.ok = false
	m.mu.Unlock()
	if wasSet {
		m.subs.notify(Session{}, false)
	}
	return nil
}

func (m *MemoryStore) Subscribe(fn func(Session, bool)) func() {
	return m.subs.add(fn)
}
