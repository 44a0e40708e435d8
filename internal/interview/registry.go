package interview

import (
	"context"
	"log"
	"sync"
	"time"
)

type entry struct {
	session      *Session
	busy         sync.Mutex
	lastActivity time.Time
}

// Registry хранит независимые сессии по ключу (чат, пользователь, id).
// Пока ответ оценивается, второй запрос к той же сессии получает ErrBusy.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	timeout time.Duration
	now     func() time.Time
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		timeout: timeout,
		now:     time.Now,
	}
}

// Put сохраняет сессию, заменяя предыдущую с тем же ключом
func (r *Registry) Put(key string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &entry{session: s, lastActivity: r.now()}
}

func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.session, true
}

func (r *Registry) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Do выполняет fn с эксклюзивным доступом к сессии
func (r *Registry) Do(key string, fn func(*Session) error) error {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	if !e.busy.TryLock() {
		return ErrBusy
	}
	defer e.busy.Unlock()

	err := fn(e.session)

	r.mu.Lock()
	e.lastActivity = r.now()
	r.mu.Unlock()

	return err
}

// Cleanup удаляет сессии, неактивные дольше timeout. Занятые сессии не трогает.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.timeout)
	removed := 0
	for key, e := range r.entries {
		if !e.lastActivity.Before(cutoff) {
			continue
		}
		if !e.busy.TryLock() {
			continue
		}
		delete(r.entries, key)
		e.busy.Unlock()
		removed++
	}
	return removed
}

// StartCleanup периодически вызывает Cleanup до отмены ctx
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Cleanup(); n > 0 {
					log.Printf("[INFO] Removed %d inactive sessions", n)
				}
			}
		}
	}()
}
