package usecase

import (
	"sort"
	"strings"
	"sync"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// DefaultHistoryCap bounds the per-conversation forecast history ring.
const DefaultHistoryCap = 20

type savedEntry struct {
	name     string // display casing as the user wrote it
	forecast models.ActiveForecast
}

// ConversationState is the per-conversation record the engine mutates: the
// active forecast, a bounded history of past snapshots, and the named saves.
// Turns against one conversation are serialized through mu; different
// conversations share nothing.
type ConversationState struct {
	id         string
	mu         sync.Mutex
	active     *models.ActiveForecast
	history    []models.ActiveForecast
	historyCap int
	saved      map[string]savedEntry // keyed by lowercase name
}

func NewConversationState(id string, historyCap int) *ConversationState {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &ConversationState{
		id:         id,
		historyCap: historyCap,
		saved:      make(map[string]savedEntry),
	}
}

func (s *ConversationState) ID() string { return s.id }

// HasActive reports whether a forecast is active. Safe for concurrent use.
func (s *ConversationState) HasActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Active returns a copy of the active forecast, if any.
func (s *ConversationState) Active() (models.ActiveForecast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return models.ActiveForecast{}, false
	}
	return s.active.Clone(), true
}

// History returns a copy of the history snapshots, oldest first.
func (s *ConversationState) History() []models.ActiveForecast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActiveForecast, len(s.history))
	copy(out, s.history)
	return out
}

// SavedNames returns the display names of in-memory saves, sorted.
func (s *ConversationState) SavedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedNamesLocked()
}

// Named resolves an in-memory save case-insensitively.
func (s *ConversationState) Named(name string) (models.ActiveForecast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namedLocked(name)
}

// --- locked accessors used by the engine, which holds mu for a whole turn ---

func (s *ConversationState) replaceActiveLocked(f models.ActiveForecast) {
	// Wholesale replacement; the previous snapshot is the caller's to keep.
	clone := f.Clone()
	s.active = &clone
}

func (s *ConversationState) pushHistoryLocked(f models.ActiveForecast) {
	s.history = append(s.history, f.Clone())
	if len(s.history) > s.historyCap {
		s.history = s.history[len(s.history)-s.historyCap:]
	}
}

func (s *ConversationState) saveNamedLocked(name string, f models.ActiveForecast) {
	// Last write wins per (conversation, lowercase name).
	s.saved[strings.ToLower(name)] = savedEntry{name: name, forecast: f.Clone()}
}

func (s *ConversationState) namedLocked(name string) (models.ActiveForecast, bool) {
	e, ok := s.saved[strings.ToLower(name)]
	if !ok {
		return models.ActiveForecast{}, false
	}
	return e.forecast.Clone(), true
}

func (s *ConversationState) savedNamesLocked() []string {
	names := make([]string, 0, len(s.saved))
	for _, e := range s.saved {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// ConversationManager tracks live conversation states by id. States are
// created lazily and live until the conversation is removed.
type ConversationManager struct {
	mu         sync.RWMutex
	convs      map[string]*ConversationState
	historyCap int
}

func NewConversationManager(historyCap int) *ConversationManager {
	return &ConversationManager{
		convs:      make(map[string]*ConversationState),
		historyCap: historyCap,
	}
}

func (m *ConversationManager) Get(id string) (*ConversationState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.convs[id]
	return st, ok
}

func (m *ConversationManager) GetOrCreate(id string) *ConversationState {
	m.mu.RLock()
	st, ok := m.convs[id]
	m.mu.RUnlock()
	if ok {
		return st
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.convs[id]; ok {
		return st
	}
	st = NewConversationState(id, m.historyCap)
	m.convs[id] = st
	return st
}

// Remove drops a conversation's in-memory state. Durable saves outlive it.
func (m *ConversationManager) Remove(id string) {
	m.mu.Lock()
	delete(m.convs, id)
	m.mu.Unlock()
}

// Len returns the number of live conversations.
func (m *ConversationManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.convs)
}
