package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yegors/voxrelay/internal/auth"
	"github.com/yegors/voxrelay/internal/session"
	"github.com/yegors/voxrelay/internal/transcription"
	"github.com/yegors/voxrelay/pkg/logger"
)

// languageCallbackPrefix tags inline keyboard payloads carrying a language code
const languageCallbackPrefix = "lang_"

// menuRowSize is how many language buttons go on one keyboard row
const menuRowSize = 5

// User-visible replies. Every component error maps to exactly one of these.
const (
	msgUnauthorized       = "Sorry, you are not authorized to use this bot."
	msgUnauthorizedToast  = "You are not authorized to use this bot."
	msgSelectLanguage     = "Please select the language of the audio:"
	msgNotAudio           = "Please send a voice message or an audio file."
	msgFileUnavailable    = "Sorry, I couldn't process that file. Please try again."
	msgTranscriptionError = "Sorry, there was an error processing your audio. Please try again."
	msgDeliveryError      = "Sorry, something went wrong. Please try again."
	msgUnknownLanguage    = "That language is not supported. Use /start to pick one from the menu."
)

// Transcriber is the single outbound call of the pipeline. Satisfied by
// *transcription.Client; tests substitute a fake.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error)
}

// Router maps inbound updates to the pipeline components. Every update is
// handled in its own goroutine, so conversations never block each other;
// concurrent audio messages for one conversation run as independent pipeline
// runs. Every component error is converted into exactly one user-visible
// reply and never crashes the update loop.
type Router struct {
	messenger   Messenger
	guard       *auth.Guard
	prefs       *session.Preferences
	resolver    *Resolver
	transcriber Transcriber
	dispatcher  *Dispatcher
	options     transcription.FormatOptions
	stats       *Stats
	logger      *logger.Logger
}

// NewRouter wires the pipeline together
func NewRouter(
	messenger Messenger,
	guard *auth.Guard,
	prefs *session.Preferences,
	resolver *Resolver,
	transcriber Transcriber,
	dispatcher *Dispatcher,
	options transcription.FormatOptions,
	stats *Stats,
	log *logger.Logger,
) *Router {
	return &Router{
		messenger:   messenger,
		guard:       guard,
		prefs:       prefs,
		resolver:    resolver,
		transcriber: transcriber,
		dispatcher:  dispatcher,
		options:     options,
		stats:       stats,
		logger:      log.Named("router"),
	}
}

// Run consumes updates until the context is cancelled or the channel closes
func (r *Router) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	r.logger.Info("Update loop started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				r.logger.Info("Update channel closed")
				return
			}
			go r.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one inbound event to its handler
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		r.handleCommand(update.Message)
	case update.Message != nil:
		r.handleMessage(ctx, update.Message)
	}
}

// handleCommand handles /start and /help
func (r *Router) handleCommand(msg *tgbotapi.Message) {
	if !r.authorize(msg.From, msg.Chat.ID) {
		return
	}

	switch msg.Command() {
	case "start", "help":
		r.sendGreeting(msg)
		r.sendLanguageMenu(msg.Chat.ID)
	default:
		r.reply(msg.Chat.ID, msgNotAudio)
	}
}

// sendGreeting sends the HTML greeting that mentions the user
func (r *Router) sendGreeting(msg *tgbotapi.Message) {
	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	greeting := fmt.Sprintf(
		`Hi <a href="tg://user?id=%d">%s</a>! I can transcribe voice messages with improved formatting and speaker diarization. Send me a voice message or audio file to get started.`,
		msg.From.ID, html.EscapeString(name),
	)
	if err := r.messenger.SendHTML(msg.Chat.ID, greeting); err != nil {
		r.logger.Error("Failed to send greeting", logger.Error(err))
	}
}

// sendLanguageMenu presents the inline keyboard of selectable languages,
// laid out menuRowSize per row
func (r *Router) sendLanguageMenu(chatID int64) {
	var rows [][]Button
	var row []Button
	for _, lang := range transcription.Languages {
		row = append(row, Button{
			Label: lang.Label,
			Data:  languageCallbackPrefix + lang.Code,
		})
		if len(row) == menuRowSize {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if err := r.messenger.SendKeyboard(chatID, msgSelectLanguage, rows); err != nil {
		r.logger.Error("Failed to send language menu", logger.Error(err))
	}
}

// handleCallback handles inline keyboard presses
func (r *Router) handleCallback(query *tgbotapi.CallbackQuery) {
	if !r.guard.IsAuthorized(query.From.ID) {
		r.stats.recordDenied()
		r.logger.Warn("Denied callback from unauthorized sender",
			logger.Int64("sender_id", query.From.ID))
		if err := r.messenger.AnswerCallback(query.ID, msgUnauthorizedToast); err != nil {
			r.logger.Error("Failed to answer callback", logger.Error(err))
		}
		return
	}

	if err := r.messenger.AnswerCallback(query.ID, ""); err != nil {
		r.logger.Error("Failed to answer callback", logger.Error(err))
	}

	if !strings.HasPrefix(query.Data, languageCallbackPrefix) {
		r.logger.Warn("Ignoring unknown callback payload",
			logger.String("data", query.Data))
		return
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	code := strings.TrimPrefix(query.Data, languageCallbackPrefix)

	lang, err := r.prefs.Select(chatID, code)
	if err != nil {
		var invalid *session.InvalidLanguageError
		if errors.As(err, &invalid) {
			r.editOrLog(chatID, query.Message.MessageID, msgUnknownLanguage)
			return
		}
		r.logger.Error("Failed to store language selection", logger.Error(err))
		r.reply(chatID, msgDeliveryError)
		return
	}

	confirmation := fmt.Sprintf("Language set to %s. You can now send me a voice message or audio file.", lang.Label)
	r.editOrLog(chatID, query.Message.MessageID, confirmation)
}

// handleMessage runs the transcription pipeline for one audio message
func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !r.authorize(msg.From, msg.Chat.ID) {
		return
	}
	chatID := msg.Chat.ID

	// Classify and resolve the attachment before touching session state, so
	// a message with nothing transcribable never initializes a session.
	audio, kind, err := r.resolver.Resolve(msg)
	if err != nil {
		var unsupported *UnsupportedAttachmentError
		var unavailable *AttachmentUnavailableError
		switch {
		case errors.As(err, &unsupported):
			r.reply(chatID, msgNotAudio)
		case errors.As(err, &unavailable):
			r.logger.Warn("Attachment unavailable", logger.Error(err))
			r.reply(chatID, msgFileUnavailable)
		default:
			r.logger.Error("Attachment resolution failed", logger.Error(err))
			r.reply(chatID, msgFileUnavailable)
		}
		return
	}

	lang, firstUse, err := r.prefs.Resolve(chatID)
	if err != nil {
		r.logger.Error("Failed to resolve language preference", logger.Error(err))
		r.reply(chatID, msgTranscriptionError)
		return
	}
	if firstUse {
		notice := fmt.Sprintf("Using default language: %s. You can change it using the /start command.", lang.Label)
		r.reply(chatID, notice)
	}

	r.logger.Info("Transcribing audio message",
		logger.Int64("chat_id", chatID),
		logger.String("kind", kind.String()),
		logger.String("language", lang.Code),
		logger.String("mime_type", audio.MIMEType))

	request := transcription.Request{
		Audio:    audio,
		Language: lang.Code,
		Options:  r.options,
	}

	result, err := r.transcriber.Transcribe(ctx, request)
	if err != nil {
		r.stats.recordFailed()
		r.logger.Error("Transcription failed",
			logger.Int64("chat_id", chatID),
			logger.Error(err))
		r.reply(chatID, msgTranscriptionError)
		return
	}

	text := transcription.Format(result)
	if err := r.dispatcher.Deliver(chatID, text); err != nil {
		r.stats.recordFailed()
		r.logger.Error("Transcript delivery failed",
			logger.Int64("chat_id", chatID),
			logger.Error(err))
		// Best-effort notice on the same channel; a failure here is only logged
		r.reply(chatID, msgDeliveryError)
		return
	}

	r.stats.recordCompleted(len(text))
}

// authorize checks the sender and emits the denial reply on failure
func (r *Router) authorize(from *tgbotapi.User, chatID int64) bool {
	if from != nil && r.guard.IsAuthorized(from.ID) {
		return true
	}
	r.stats.recordDenied()
	senderID := int64(0)
	if from != nil {
		senderID = from.ID
	}
	r.logger.Warn("Denied event from unauthorized sender",
		logger.Int64("sender_id", senderID))
	r.reply(chatID, msgUnauthorized)
	return false
}

// reply sends a plain text message, logging any transport failure
func (r *Router) reply(chatID int64, text string) {
	if err := r.messenger.SendText(chatID, text); err != nil {
		r.logger.Error("Failed to send reply",
			logger.Int64("chat_id", chatID),
			logger.Error(err))
	}
}

// editOrLog edits a previously sent message, logging any transport failure
func (r *Router) editOrLog(chatID int64, messageID int, text string) {
	if err := r.messenger.EditMessageText(chatID, messageID, text); err != nil {
		r.logger.Error("Failed to edit message",
			logger.Int64("chat_id", chatID),
			logger.Error(err))
	}
}
