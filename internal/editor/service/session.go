package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"class-diagram/internal/editor"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Store — постоянное хранилище снимков. Реализуется repository.Repository.
type Store interface {
	Save(ctx context.Context, id string, snapshot []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Factory создает новый редактор, привязанный к странице.
type Factory func() (*editor.Editor, error)

type session struct {
	editor   *editor.Editor
	lastUsed time.Time
}

// ============================================================
// Session Manager
// ============================================================

type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session // sessionID -> editor
	store    Store
	factory  Factory
	now      func() time.Time
}

// NewSessionManager: store может быть nil, тогда сессии живут только в памяти.
func NewSessionManager(factory Factory, store Store) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		store:    store,
		factory:  factory,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени для учета простоя.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

func (m *SessionManager) Create(ctx context.Context) (string, *editor.Editor, error) {
	ed, err := m.factory()
	if err != nil {
		return "", nil, fmt.Errorf("start editor: %w", err)
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = &session{editor: ed, lastUsed: m.now()}
	m.mu.Unlock()

	if err := m.Persist(ctx, id, ed); err != nil {
		return "", nil, err
	}
	log.Printf("[SESSIONS] created %s", id)
	return id, ed, nil
}

// Get ищет сессию в памяти, затем в хранилище. Чтение и восстановление
// снимка идут без блокировки менеджера.
func (m *SessionManager) Get(ctx context.Context, id string) (*editor.Editor, error) {
	if ed, ok := m.touch(id); ok {
		return ed, nil
	}
	if m.store == nil {
		return nil, ErrSessionNotFound
	}

	data, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}

	ed, err := m.factory()
	if err != nil {
		return nil, fmt.Errorf("start editor: %w", err)
	}
	if err := ed.UnmarshalSnapshot(data); err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Параллельный Get мог восстановить ту же сессию раньше.
	if s, ok := m.sessions[id]; ok {
		s.lastUsed = m.now()
		return s.editor, nil
	}
	m.sessions[id] = &session{editor: ed, lastUsed: m.now()}
	log.Printf("[SESSIONS] restored %s", id)
	return ed, nil
}

func (m *SessionManager) touch(id string) (*editor.Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastUsed = m.now()
	return s.editor, true
}

// Persist сохраняет снимок сессии, если есть хранилище.
func (m *SessionManager) Persist(ctx context.Context, id string, ed *editor.Editor) error {
	if m.store == nil {
		return nil
	}
	data, err := ed.MarshalSnapshot()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return m.store.Save(ctx, id, data)
}

func (m *SessionManager) Drop(ctx context.Context, id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.store == nil {
		if !inMemory {
			return ErrSessionNotFound
		}
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !inMemory {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// Len — число сессий в памяти.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ============================================================
// Eviction
// ============================================================

// EvictIdle сохраняет и выгружает из памяти сессии, простаивающие дольше maxIdle.
// Без хранилища выгружать некуда, поэтому ничего не делает.
func (m *SessionManager) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	if m.store == nil || maxIdle <= 0 {
		return 0
	}

	cutoff := m.now().Add(-maxIdle)
	idle := make(map[string]*editor.Editor)

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			idle[id] = s.editor
		}
	}
	m.mu.Unlock()

	evicted := 0
	for id, ed := range idle {
		if err := m.Persist(ctx, id, ed); err != nil {
			log.Printf("[SESSIONS] persist %s before eviction: %v", id, err)
			continue
		}

		m.mu.Lock()
		// Сессию могли использовать, пока шло сохранение.
		if s, ok := m.sessions[id]; ok && s.editor == ed && s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
		m.mu.Unlock()
	}

	if evicted > 0 {
		log.Printf("[SESSIONS] evicted %d idle sessions", evicted)
	}
	return evicted
}

// RunEviction вызывает EvictIdle каждые interval до отмены ctx.
func (m *SessionManager) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(ctx, maxIdle)
		}
	}
}
