package session

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/sadopc/studylog/internal/clock"
)

// Store is the in-memory, ordered session collection and the only source of
// truth. Every persisting mutation saves the full collection before it
// returns.
//
// A Store is not safe for concurrent use; all calls must come from one
// goroutine.
type Store struct {
	backend  Backend
	clock    clock.Clock
	logger   hclog.Logger
	sessions []Session
	lastID   int64
	onDelete []func(id int64)
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l hclog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore loads the collection from backend. Sessions persisted as running
// come back stopped: their ticks died with the process that owned them.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   clock.System{},
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = backend.Load()
	stale := 0
	for i := range s.sessions {
		if s.sessions[i].Running {
			s.sessions[i].Running = false
			stale++
		}
		if s.sessions[i].ID > s.lastID {
			s.lastID = s.sessions[i].ID
		}
	}
	if stale > 0 {
		s.logger.Info("reset running sessions on load", "count", stale)
	}
	return s
}

// OnDelete registers fn to run before a session is removed.
func (s *Store) OnDelete(fn func(id int64)) {
	s.onDelete = append(s.onDelete, fn)
}

func (s *Store) Create(date string) (Session, error) {
	if _, err := ParseDate(date); err != nil {
		return Session{}, err
	}
	sess := Session{
		ID:   s.nextID(),
		Date: date,
		Tags: []string{},
	}
	s.sessions = append(s.sessions, sess)
	s.logger.Debug("created session", "id", sess.ID, "date", date)
	return sess.Clone(), s.save()
}

func (s *Store) nextID() int64 {
	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) Find(id int64) (Session, bool) {
	i := s.index(id)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].Clone(), true
}

func (s *Store) Delete(id int64) error {
	if s.index(id) < 0 {
		return fmt.Errorf("delete %d: %w", id, ErrNotFound)
	}
	for _, fn := range s.onDelete {
		fn(id)
	}
	// Hooks may touch the collection; look the index up again.
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	s.logger.Debug("deleted session", "id", id)
	return s.save()
}

// Update applies fn to the session and persists. ID and Date cannot change
// and Duration cannot go down; such edits are reverted.
func (s *Store) Update(id int64, fn func(*Session)) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	sess := &s.sessions[i]
	before := *sess
	fn(sess)
	sess.ID = before.ID
	sess.Date = before.Date
	if sess.Duration < before.Duration {
		sess.Duration = before.Duration
	}
	if sess.Tags == nil {
		sess.Tags = []string{}
	}
	return s.save()
}

func (s *Store) SetNotes(id int64, notes string) error {
	return s.Update(id, func(sess *Session) { sess.Notes = notes })
}

// AddTag appends a trimmed tag. Blank tags are ignored without error.
func (s *Store) AddTag(id int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	return s.Update(id, func(sess *Session) { sess.Tags = append(sess.Tags, tag) })
}

// AddDuration bumps the elapsed seconds in memory only. Callers decide when
// to Flush.
func (s *Store) AddDuration(id int64, delta int64) (int64, error) {
	i := s.index(id)
	if i < 0 {
		return 0, fmt.Errorf("add duration %d: %w", id, ErrNotFound)
	}
	if delta > 0 {
		s.sessions[i].Duration += delta
	}
	return s.sessions[i].Duration, nil
}

// Flush persists the current collection.
func (s *Store) Flush() error {
	return s.save()
}

func (s *Store) ListByDate(date string) []Session {
	var out []Session
	for _, sess := range s.sessions {
		if sess.Date == date {
			out = append(out, sess.Clone())
		}
	}
	return out
}

func (s *Store) ListByMonth(yearMonth string) []Session {
	if _, err := ParseMonth(yearMonth); err != nil {
		return nil
	}
	var out []Session
	for _, sess := range s.sessions {
		if strings.HasPrefix(sess.Date, yearMonth) {
			out = append(out, sess.Clone())
		}
	}
	return out
}

func (s *Store) All() []Session {
	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

func (s *Store) Len() int {
	return len(s.sessions)
}

func (s *Store) index(id int64) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save() error {
	if err := s.backend.Save(s.All()); err != nil {
		s.logger.Warn("save failed, keeping in-memory state", "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
