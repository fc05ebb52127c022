package transcription

import (
	"fmt"
	"strings"
)

// unknownLanguage is rendered when the provider reported no detected language
const unknownLanguage = "unknown"

// Format renders a normalized result into the reply text. Diarized results
// become one "Speaker N: ..." block per utterance, in the provider's order;
// undiarized results fall back to the full transcript. The header always
// names the detected language. Pure function, no I/O.
func Format(result *Result) string {
	lang := result.DetectedLanguage
	if lang == "" {
		lang = unknownLanguage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detected language: %s\n\n", lang)

	if len(result.Utterances) == 0 {
		b.WriteString(result.Transcript)
		return b.String()
	}

	for _, u := range result.Utterances {
		fmt.Fprintf(&b, "Speaker %d: %s\n\n", u.Speaker, u.Text)
	}
	return b.String()
}
