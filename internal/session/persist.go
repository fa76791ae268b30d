package session

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// DefaultKey is the kv entry holding the serialized collection.
const DefaultKey = "sessions"

// KV is the slice of the local key-value store the adapter needs.
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// Backend loads the collection once and saves it in full.
type Backend interface {
	Load() []Session
	Save(sessions []Session) error
}

// LocalState persists the whole collection as one JSON array under a
// single key.
type LocalState struct {
	kv     KV
	key    string
	logger hclog.Logger
}

func NewLocalState(kv KV, key string, logger hclog.Logger) *LocalState {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LocalState{kv: kv, key: key, logger: logger}
}

// Load never fails: an absent, unreadable or corrupt entry is an empty
// collection.
func (l *LocalState) Load() []Session {
	raw, ok, err := l.kv.Get(l.key)
	if err != nil {
		l.logger.Warn("read sessions, starting empty", "key", l.key, "error", err)
		return []Session{}
	}
	if !ok {
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		l.logger.Warn("parse sessions, starting empty", "key", l.key, "error", err)
		return []Session{}
	}
	if sessions == nil {
		return []Session{}
	}
	for i := range sessions {
		if sessions[i].Tags == nil {
			sessions[i].Tags = []string{}
		}
	}
	l.logger.Debug("loaded sessions", "count", len(sessions))
	return sessions
}

// Save replaces the stored collection.
func (l *LocalState) Save(sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := l.kv.Put(l.key, string(data)); err != nil {
		return err
	}
	return nil
}
