package bot

// Button is one inline keyboard option: a display label and the opaque
// callback payload returned when it is pressed.
type Button struct {
	Label string
	Data  string
}

// Messenger is the outbound surface of the chat platform. The router and
// dispatcher talk only to this interface; the Telegram SDK implementation
// lives in telegram.go and tests substitute a fake.
type Messenger interface {
	// SendText sends a plain text reply to a conversation
	SendText(chatID int64, text string) error
	// SendHTML sends an HTML-formatted reply
	SendHTML(chatID int64, html string) error
	// SendKeyboard sends a text prompt with an inline keyboard
	SendKeyboard(chatID int64, text string, rows [][]Button) error
	// EditMessageText replaces the text of a previously sent message
	EditMessageText(chatID int64, messageID int, text string) error
	// SendDocument uploads data as a file attachment with the given name
	SendDocument(chatID int64, filename string, data []byte) error
	// AnswerCallback acknowledges a button press, optionally with a toast
	AnswerCallback(callbackID string, text string) error
	// FileURL resolves a platform file handle to a fetchable URL
	FileURL(fileID string) (string, error)
}
