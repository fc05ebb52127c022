package transcription

import (
	"encoding/json"
	"strings"
)

// The provider has shipped three incompatible prerecorded response shapes
// over time: a flat transcript-only payload, a payload that adds
// detected_language on the channel, and a payload that nests diarized
// paragraphs under the alternative. All three decode into responseEnvelope
// (the union of the shapes), and a fixed ordered list of schema adapters is
// consulted for the first structural match. Supporting a new provider schema
// means adding one adapter, not patching a monolithic parser.

// responseEnvelope is the superset of the provider's historical prerecorded
// response shapes
type responseEnvelope struct {
	Results struct {
		Channels []channel `json:"channels"`
	} `json:"results"`
}

type channel struct {
	DetectedLanguage string        `json:"detected_language"`
	Alternatives     []alternative `json:"alternatives"`
}

type alternative struct {
	Transcript string              `json:"transcript"`
	Paragraphs *paragraphContainer `json:"paragraphs"`
}

type paragraphContainer struct {
	Paragraphs []paragraph `json:"paragraphs"`
}

type paragraph struct {
	Speaker   int    `json:"speaker"`
	Text      string `json:"text"`
	Sentences []struct {
		Text string `json:"text"`
	} `json:"sentences"`
}

// firstAlternative returns the first channel's first alternative, or nil
func (e *responseEnvelope) firstAlternative() *alternative {
	if len(e.Results.Channels) == 0 {
		return nil
	}
	if len(e.Results.Channels[0].Alternatives) == 0 {
		return nil
	}
	return &e.Results.Channels[0].Alternatives[0]
}

// text returns the paragraph text, falling back to joining sentence texts
// for schema revisions that omit the flattened paragraph text field
func (p paragraph) text() string {
	if p.Text != "" {
		return p.Text
	}
	parts := make([]string, 0, len(p.Sentences))
	for _, s := range p.Sentences {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// schemaAdapter normalizes one known provider response shape into Result
type schemaAdapter interface {
	// Name identifies the adapter in logs
	Name() string
	// Matches reports whether the decoded envelope structurally belongs to
	// this adapter's schema version
	Matches(env *responseEnvelope) bool
	// Normalize maps the envelope into the canonical result
	Normalize(env *responseEnvelope) *Result
}

// schemaAdapters is consulted in order; the most specific shape comes first
var schemaAdapters = []schemaAdapter{
	paragraphSchema{},
	detectedLanguageSchema{},
	flatSchema{},
}

// paragraphSchema handles the newest shape: diarized paragraphs nested under
// the alternative, with detected_language on the channel.
type paragraphSchema struct{}

func (paragraphSchema) Name() string { return "paragraphs" }

func (paragraphSchema) Matches(env *responseEnvelope) bool {
	alt := env.firstAlternative()
	return alt != nil && alt.Paragraphs != nil && len(alt.Paragraphs.Paragraphs) > 0
}

func (paragraphSchema) Normalize(env *responseEnvelope) *Result {
	alt := env.firstAlternative()
	utterances := make([]Utterance, 0, len(alt.Paragraphs.Paragraphs))
	for _, p := range alt.Paragraphs.Paragraphs {
		utterances = append(utterances, Utterance{
			Speaker: p.Speaker,
			Text:    p.text(),
		})
	}
	return &Result{
		Transcript:       alt.Transcript,
		DetectedLanguage: env.Results.Channels[0].DetectedLanguage,
		Utterances:       utterances,
	}
}

// detectedLanguageSchema handles the middle shape: no paragraph data, but
// the channel reports the detected language.
type detectedLanguageSchema struct{}

func (detectedLanguageSchema) Name() string { return "detected-language" }

func (detectedLanguageSchema) Matches(env *responseEnvelope) bool {
	if env.firstAlternative() == nil {
		return false
	}
	return env.Results.Channels[0].DetectedLanguage != ""
}

func (detectedLanguageSchema) Normalize(env *responseEnvelope) *Result {
	return &Result{
		Transcript:       env.firstAlternative().Transcript,
		DetectedLanguage: env.Results.Channels[0].DetectedLanguage,
	}
}

// flatSchema handles the oldest shape: transcript only
type flatSchema struct{}

func (flatSchema) Name() string { return "flat" }

func (flatSchema) Matches(env *responseEnvelope) bool {
	return env.firstAlternative() != nil
}

func (flatSchema) Normalize(env *responseEnvelope) *Result {
	return &Result{Transcript: env.firstAlternative().Transcript}
}

// normalizeResponse decodes a raw provider response body and maps it through
// the first matching schema adapter. It returns the adapter name for logging.
// A body that decodes but matches no adapter, or whose transcript is empty,
// is a provider error.
func normalizeResponse(body []byte) (*Result, string, error) {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", &ProviderError{Reason: "malformed response body: " + err.Error()}
	}

	for _, adapter := range schemaAdapters {
		if !adapter.Matches(&env) {
			continue
		}
		result := adapter.Normalize(&env)
		if result.Transcript == "" {
			return nil, "", &ProviderError{Reason: "response contains no transcript"}
		}
		return result, adapter.Name(), nil
	}

	return nil, "", &ProviderError{Reason: "response matches no known schema"}
}
