package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger implements Messenger on top of the Telegram Bot API SDK
type TelegramMessenger struct {
	api *tgbotapi.BotAPI
}

// NewTelegramMessenger wraps an authenticated Bot API client
func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

// SendText sends a plain text reply to a conversation
func (m *TelegramMessenger) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendHTML sends an HTML-formatted reply
func (m *TelegramMessenger) SendHTML(chatID int64, html string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send HTML message: %w", err)
	}
	return nil
}

// SendKeyboard sends a text prompt with an inline keyboard
func (m *TelegramMessenger) SendKeyboard(chatID int64, text string, rows [][]Button) error {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		keyboard = append(keyboard, buttons)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send keyboard: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of a previously sent message
func (m *TelegramMessenger) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// SendDocument uploads data as a file attachment with the given name
func (m *TelegramMessenger) SendDocument(chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})
	if _, err := m.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast
func (m *TelegramMessenger) AnswerCallback(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := m.api.Request(callback); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// FileURL resolves a platform file handle to a fetchable URL. This is the
// single remote call attachment resolution is allowed.
func (m *TelegramMessenger) FileURL(fileID string) (string, error) {
	url, err := m.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	return url, nil
}
