package transcription

// Language is one selectable transcription language: a provider language
// code paired with the label shown on the selection keyboard.
type Language struct {
	Code  string
	Label string
}

// Languages is the fixed set of selectable languages, in menu order
var Languages = []Language{
	{Code: "en", Label: "English 🇬🇧"},
	{Code: "es", Label: "Spanish 🇪🇸"},
	{Code: "fr", Label: "French 🇫🇷"},
	{Code: "de", Label: "German 🇩🇪"},
	{Code: "it", Label: "Italian 🇮🇹"},
	{Code: "pt", Label: "Portuguese 🇵🇹"},
	{Code: "nl", Label: "Dutch 🇳🇱"},
	{Code: "ja", Label: "Japanese 🇯🇵"},
	{Code: "ko", Label: "Korean 🇰🇷"},
	{Code: "zh", Label: "Chinese 🇨🇳"},
}

// LanguageByCode looks up a language by its code
func LanguageByCode(code string) (Language, bool) {
	for _, lang := range Languages {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}

// FormatOptions are the formatting and diarization flags attached to every
// transcription request
type FormatOptions struct {
	SmartFormat    bool
	Punctuate      bool
	Diarize        bool
	Paragraphs     bool
	DetectLanguage bool
}

// AudioReference points at the audio for a single request: either a remotely
// fetchable URL or raw bytes, plus the declared MIME type. It is created per
// inbound message and discarded once the request completes or fails.
type AudioReference struct {
	URL      string // remote audio URL (used when non-empty)
	Data     []byte // raw audio bytes (used when URL is empty)
	MIMEType string // declared MIME type, e.g. "audio/ogg"
	Size     int64  // declared size in bytes, 0 if unknown
}

// Request is one immutable transcription request. It is constructed once per
// audio message and consumed exactly once by the client.
type Request struct {
	Audio    AudioReference
	Language string
	Options  FormatOptions
}

// Utterance is a single speaker-attributed segment of a diarized transcript.
// Speaker indexes are 0-based and stable within one transcript only.
type Utterance struct {
	Speaker int
	Text    string
}

// Result is the canonical shape every provider response variant is
// normalized into. Transcript is always non-empty on success; Utterances is
// empty when the provider performed no diarization; DetectedLanguage is ""
// when the provider did not report one.
type Result struct {
	Transcript       string
	DetectedLanguage string
	Utterances       []Utterance
}
