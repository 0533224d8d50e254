// Package outputs keeps the full captured output of every sandbox command,
// keyed by conversation. The agent only ever sees a truncated view of a
// command's output; the store is what makes the rest searchable afterwards.
package outputs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one executed command's captured result. Records are append-only
// and outlive the environment they ran in.
type Record struct {
	ID        string    `json:"commandId"`
	Command   string    `json:"command"`
	Stdout    string    `json:"stdout"`
	Stderr    string    `json:"stderr"`
	ExitCode  int       `json:"exitCode"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds command records per conversation.
type Store struct {
	mu      sync.RWMutex
	records map[string][]Record
	logger  *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		records: make(map[string][]Record),
		logger:  logger,
	}
}

// Append adds a record to the conversation's log.
func (s *Store) Append(conversationID string, rec Record) {
	s.mu.Lock()
	s.records[conversationID] = append(s.records[conversationID], rec)
	s.mu.Unlock()

	s.logger.Debug("recorded command output",
		zap.String("conversation", conversationID),
		zap.String("command_id", rec.ID),
		zap.Int("exit_code", rec.ExitCode))
}

// Records returns a copy of the conversation's records in execution order.
func (s *Store) Records(conversationID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[conversationID]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out
}

// Get returns the record with the given command id, if it exists.
func (s *Store) Get(conversationID, commandID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records[conversationID] {
		if rec.ID == commandID {
			return rec, true
		}
	}
	return Record{}, false
}

// Len returns the number of records for a conversation.
func (s *Store) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[conversationID])
}

// Clear discards all records for a conversation.
func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	n := len(s.records[conversationID])
	delete(s.records, conversationID)
	s.mu.Unlock()

	if n > 0 {
		s.logger.Debug("cleared command output",
			zap.String("conversation", conversationID),
			zap.Int("records", n))
	}
}
