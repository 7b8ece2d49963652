// Package flash stores one-shot messages that survive a redirect and are
// shown on the next rendered page.
package flash

import (
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Category selects how a message is styled.
type Category string

const (
	Success Category = "success"
	Error   Category = "error"
)

// Message is a flash popped for display.
type Message struct {
	Category Category
	Text     string
}

// Store reads and writes flashes in a dedicated session cookie so that
// clearing flashes never rewrites the auth session.
type Store struct {
	sessions sessions.Store
	name     string
	log      *zap.Logger
}

// New returns a Store that keeps flashes in the cookie <sessionName>-flash.
func New(store sessions.Store, sessionName string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{sessions: store, name: sessionName + "-flash", log: log}
}

// Name is the cookie name flashes are kept in.
func (s *Store) Name() string { return s.name }

// Add queues text under cat. It must be called before the response header
// is written.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, cat Category, text string) error {
	sess, err := s.sessions.Get(r, s.name)
	if err != nil {
		// A cookie signed with a rotated key decodes as an error but still
		// yields a fresh session we can write to.
		s.log.Debug("flash session decode failed; starting fresh", zap.Error(err))
	}
	sess.AddFlash(text, string(cat))
	return sess.Save(r, w)
}

// Success is shorthand for Add(w, r, flash.Success, text) that logs instead
// of returning the error.
func (s *Store) Success(w http.ResponseWriter, r *http.Request, text string) {
	if err := s.Add(w, r, Success, text); err != nil {
		s.log.Warn("save flash failed", zap.Error(err))
	}
}

// Error is the error-category counterpart of Success.
func (s *Store) Error(w http.ResponseWriter, r *http.Request, text string) {
	if err := s.Add(w, r, Error, text); err != nil {
		s.log.Warn("save flash failed", zap.Error(err))
	}
}

// Pop returns and clears all queued flashes, success messages first.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Message {
	sess, err := s.sessions.Get(r, s.name)
	if err != nil {
		return nil
	}

	var out []Message
	for _, cat := range []Category{Success, Error} {
		for _, v := range sess.Flashes(string(cat)) {
			if text, ok := v.(string); ok && text != "" {
				out = append(out, Message{Category: cat, Text: text})
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.log.Warn("clear flashes failed", zap.Error(err))
	}
	return out
}
