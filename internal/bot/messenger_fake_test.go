package bot

import (
	"errors"
	"sync"
)

// fakeMessenger records every outbound call so tests can assert on exactly
// what a handler sent.
type fakeMessenger struct {
	mu sync.Mutex

	texts     []sentText
	htmls     []sentText
	keyboards []sentKeyboard
	edits     []sentEdit
	documents []sentDocument
	callbacks []sentCallback

	fileURLs map[string]string
	fileErr  error

	sendTextErr     error
	sendDocumentErr error
}

type sentText struct {
	ChatID int64
	Text   string
}

type sentKeyboard struct {
	ChatID int64
	Text   string
	Rows   [][]Button
}

type sentEdit struct {
	ChatID    int64
	MessageID int
	Text      string
}

type sentDocument struct {
	ChatID   int64
	Filename string
	Data     []byte
}

type sentCallback struct {
	CallbackID string
	Text       string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{fileURLs: make(map[string]string)}
}

func (f *fakeMessenger) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendTextErr != nil {
		return f.sendTextErr
	}
	f.texts = append(f.texts, sentText{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) SendHTML(chatID int64, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.htmls = append(f.htmls, sentText{ChatID: chatID, Text: html})
	return nil
}

func (f *fakeMessenger) SendKeyboard(chatID int64, text string, rows [][]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyboards = append(f.keyboards, sentKeyboard{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (f *fakeMessenger) EditMessageText(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentEdit{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (f *fakeMessenger) SendDocument(chatID int64, filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendDocumentErr != nil {
		return f.sendDocumentErr
	}
	f.documents = append(f.documents, sentDocument{ChatID: chatID, Filename: filename, Data: data})
	return nil
}

func (f *fakeMessenger) AnswerCallback(callbackID string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, sentCallback{CallbackID: callbackID, Text: text})
	return nil
}

func (f *fakeMessenger) FileURL(fileID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fileErr != nil {
		return "", f.fileErr
	}
	url, ok := f.fileURLs[fileID]
	if !ok {
		return "", errors.New("unknown file id")
	}
	return url, nil
}

func (f *fakeMessenger) sentTexts() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.texts...)
}
