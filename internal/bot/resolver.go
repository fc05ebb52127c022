package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yegors/voxrelay/internal/transcription"
	"github.com/yegors/voxrelay/pkg/logger"
)

// AttachmentKind classifies an inbound message's attachment
type AttachmentKind int

const (
	// NotAudio means the message carries nothing transcribable
	NotAudio AttachmentKind = iota
	// VoiceNote is a recorded voice message
	VoiceNote
	// AudioFile is an audio-typed attachment
	AudioFile
	// AudioDocument is a generic document whose declared MIME type is audio
	AudioDocument
)

func (k AttachmentKind) String() string {
	switch k {
	case VoiceNote:
		return "voice"
	case AudioFile:
		return "audio"
	case AudioDocument:
		return "document"
	default:
		return "not-audio"
	}
}

// voiceMIMEType is what the platform records voice notes as
const voiceMIMEType = "audio/ogg"

// fallbackAudioMIMEType covers audio attachments with no declared MIME type
const fallbackAudioMIMEType = "audio/mpeg"

// FileResolver maps a platform file handle to a fetchable URL
type FileResolver interface {
	FileURL(fileID string) (string, error)
}

// Resolver classifies inbound messages and resolves their audio into an
// AudioReference for a single transcription request.
type Resolver struct {
	files  FileResolver
	logger *logger.Logger
}

// NewResolver creates an attachment resolver
func NewResolver(files FileResolver, log *logger.Logger) *Resolver {
	return &Resolver{
		files:  files,
		logger: log.Named("resolver"),
	}
}

// Classify determines the attachment kind and returns the file handle,
// declared MIME type, and declared size. It performs no remote calls.
func Classify(msg *tgbotapi.Message) (kind AttachmentKind, fileID, mimeType string, size int64) {
	switch {
	case msg.Voice != nil:
		return VoiceNote, msg.Voice.FileID, voiceMIMEType, int64(msg.Voice.FileSize)
	case msg.Audio != nil:
		mime := msg.Audio.MimeType
		if mime == "" {
			mime = fallbackAudioMIMEType
		}
		return AudioFile, msg.Audio.FileID, mime, int64(msg.Audio.FileSize)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio/"):
		return AudioDocument, msg.Document.FileID, msg.Document.MimeType, int64(msg.Document.FileSize)
	case msg.Document != nil:
		return NotAudio, "", msg.Document.MimeType, 0
	default:
		return NotAudio, "", "", 0
	}
}

// Resolve classifies the message and resolves its file handle into an
// AudioReference. NotAudio fails with *UnsupportedAttachmentError; a handle
// that cannot be resolved fails with *AttachmentUnavailableError. At most
// one remote call to the platform is made.
func (r *Resolver) Resolve(msg *tgbotapi.Message) (transcription.AudioReference, AttachmentKind, error) {
	kind, fileID, mimeType, size := Classify(msg)
	if kind == NotAudio {
		return transcription.AudioReference{}, kind, &UnsupportedAttachmentError{MIMEType: mimeType}
	}

	url, err := r.files.FileURL(fileID)
	if err != nil {
		r.logger.Warn("Failed to resolve file handle",
			logger.String("file_id", fileID),
			logger.String("kind", kind.String()),
			logger.Error(err))
		return transcription.AudioReference{}, kind, &AttachmentUnavailableError{FileID: fileID, Err: err}
	}

	r.logger.Debug("Resolved audio attachment",
		logger.String("kind", kind.String()),
		logger.String("mime_type", mimeType),
		logger.Int64("size", size))

	return transcription.AudioReference{
		URL:      url,
		MIMEType: mimeType,
		Size:     size,
	}, kind, nil
}
