package bot

import (
	"unicode/utf8"

	"github.com/yegors/voxrelay/pkg/logger"
)

// maxInlineChars is the platform's single-message character ceiling
const maxInlineChars = 4096

// transcriptFilename names the file attachment used for oversized transcripts
const transcriptFilename = "transcription.txt"

// Dispatcher delivers formatted transcripts back to the conversation,
// switching to a file attachment when the text exceeds the platform's
// message-size limit. The text is never truncated or split.
type Dispatcher struct {
	messenger Messenger
	logger    *logger.Logger
}

// NewDispatcher creates a delivery dispatcher
func NewDispatcher(messenger Messenger, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		logger:    log.Named("dispatcher"),
	}
}

// Deliver sends text to the conversation: inline when it fits in one
// message, otherwise as a transcription.txt attachment with the full text.
// Transport failures surface as *DeliveryError and are not retried here.
func (d *Dispatcher) Deliver(chatID int64, text string) error {
	if utf8.RuneCountInString(text) <= maxInlineChars {
		if err := d.messenger.SendText(chatID, text); err != nil {
			return &DeliveryError{Err: err}
		}
		d.logger.Debug("Delivered transcript inline",
			logger.Int64("chat_id", chatID),
			logger.Int("chars", utf8.RuneCountInString(text)))
		return nil
	}

	if err := d.messenger.SendDocument(chatID, transcriptFilename, []byte(text)); err != nil {
		return &DeliveryError{Err: err}
	}
	d.logger.Info("Delivered transcript as file attachment",
		logger.Int64("chat_id", chatID),
		logger.Int("bytes", len(text)),
		logger.String("filename", transcriptFilename))
	return nil
}
