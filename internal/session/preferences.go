package session

import (
	"fmt"
	"time"

	"github.com/yegors/voxrelay/internal/transcription"
	"github.com/yegors/voxrelay/pkg/logger"
)

// InvalidLanguageError reports a selection outside the known language set.
// Prior state is left unchanged.
type InvalidLanguageError struct {
	Code string
}

func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("invalid language code: %q", e.Code)
}

// Preferences resolves and updates per-conversation language selections on
// top of a Store.
type Preferences struct {
	store      Store
	defaultLng transcription.Language
	logger     *logger.Logger
}

// NewPreferences creates the preference service. The default code must have
// been validated against the known language set at startup.
func NewPreferences(store Store, defaultCode string, log *logger.Logger) (*Preferences, error) {
	lang, ok := transcription.LanguageByCode(defaultCode)
	if !ok {
		return nil, &InvalidLanguageError{Code: defaultCode}
	}
	return &Preferences{
		store:      store,
		defaultLng: lang,
		logger:     log.Named("session"),
	}, nil
}

// Default returns the configured default language
func (p *Preferences) Default() transcription.Language {
	return p.defaultLng
}

// Resolve returns the conversation's language, lazily initializing a fresh
// conversation to the configured default. firstUse is true exactly once per
// conversation - on the call that performed the initialization - so the
// caller can emit the one-time default-language notice. Concurrent first
// touches of the same conversation are serialized by the store's atomic Init.
func (p *Preferences) Resolve(chatID int64) (lang transcription.Language, firstUse bool, err error) {
	rec, ok, err := p.store.Get(chatID)
	if err != nil {
		return transcription.Language{}, false, fmt.Errorf("failed to read session: %w", err)
	}
	if ok {
		return p.languageOf(rec), false, nil
	}

	created, err := p.store.Init(chatID, Record{
		Language:  p.defaultLng.Code,
		State:     StateDefault,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return transcription.Language{}, false, fmt.Errorf("failed to initialize session: %w", err)
	}
	if created {
		p.logger.Info("Initialized session with default language",
			logger.Int64("chat_id", chatID),
			logger.String("language", p.defaultLng.Code))
		return p.defaultLng, true, nil
	}

	// Lost the init race; another event already created the record
	rec, _, err = p.store.Get(chatID)
	if err != nil {
		return transcription.Language{}, false, fmt.Errorf("failed to re-read session: %w", err)
	}
	return p.languageOf(rec), false, nil
}

// Select validates and stores an explicit language choice, returning the
// selected language for display. An unknown code fails with
// *InvalidLanguageError and mutates nothing.
func (p *Preferences) Select(chatID int64, code string) (transcription.Language, error) {
	lang, ok := transcription.LanguageByCode(code)
	if !ok {
		return transcription.Language{}, &InvalidLanguageError{Code: code}
	}

	err := p.store.Set(chatID, Record{
		Language:  lang.Code,
		State:     StateExplicit,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return transcription.Language{}, fmt.Errorf("failed to store language selection: %w", err)
	}

	p.logger.Info("Language selected",
		logger.Int64("chat_id", chatID),
		logger.String("language", lang.Code))
	return lang, nil
}

// languageOf maps a stored record back to a Language, falling back to the
// default if the stored code has since left the known set
func (p *Preferences) languageOf(rec Record) transcription.Language {
	if lang, ok := transcription.LanguageByCode(rec.Language); ok {
		return lang
	}
	p.logger.Warn("Stored language no longer supported, using default",
		logger.String("stored", rec.Language),
		logger.String("default", p.defaultLng.Code))
	return p.defaultLng
}
