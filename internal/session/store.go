// Package session holds per-conversation state that outlives a single
// request - currently just the selected transcription language. The Store
// interface keeps the backing choice (in-memory map, SQLite, or an external
// cache) out of calling code.
package session

import "time"

// LanguageState tracks how a conversation's language preference was set.
// Transitions only move forward: Unset -> Default on first lazy read,
// Unset/Default -> Explicit on selection, Explicit -> Explicit on
// re-selection. Nothing ever returns to Unset.
type LanguageState int

const (
	// StateUnset means the conversation has never resolved a language
	StateUnset LanguageState = iota
	// StateDefault means the configured default was applied on first use
	StateDefault
	// StateExplicit means the user selected a language
	StateExplicit
)

func (s LanguageState) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateExplicit:
		return "explicit"
	default:
		return "unset"
	}
}

// Record is one conversation's stored preference
type Record struct {
	Language  string
	State     LanguageState
	UpdatedAt time.Time
}

// Store persists per-conversation records keyed by chat ID. Implementations
// must make Init atomic per chat: when multiple callers race to initialize
// the same conversation, exactly one observes created=true and all callers
// subsequently read the same record.
type Store interface {
	// Get returns the record for a chat and whether one exists
	Get(chatID int64) (Record, bool, error)
	// Set writes a record unconditionally
	Set(chatID int64, rec Record) error
	// Init writes the record only if the chat has none yet, reporting
	// whether this call created it
	Init(chatID int64, rec Record) (created bool, err error)
	// Count returns the number of stored conversations
	Count() (int, error)
	// Close releases any resources held by the backing store
	Close() error
}
