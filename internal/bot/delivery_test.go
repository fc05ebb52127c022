package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/voxrelay/pkg/logger"
)

func TestDeliverInlineAtLimit(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := NewDispatcher(messenger, logger.NewNop())

	text := strings.Repeat("a", 4096)
	require.NoError(t, dispatcher.Deliver(1, text))

	require.Len(t, messenger.texts, 1)
	assert.Equal(t, text, messenger.texts[0].Text)
	assert.Empty(t, messenger.documents)
}

func TestDeliverFileBeyondLimit(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := NewDispatcher(messenger, logger.NewNop())

	text := strings.Repeat("a", 4097)
	require.NoError(t, dispatcher.Deliver(1, text))

	assert.Empty(t, messenger.texts)
	require.Len(t, messenger.documents, 1)
	doc := messenger.documents[0]
	assert.Equal(t, "transcription.txt", doc.Filename)
	// Full text, byte for byte - never truncated or split
	assert.Equal(t, text, string(doc.Data))
}

func TestDeliverCountsCharactersNotBytes(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher := NewDispatcher(messenger, logger.NewNop())

	// 4096 multi-byte runes fit in one message even though len() is larger
	text := strings.Repeat("é", 4096)
	require.NoError(t, dispatcher.Deliver(1, text))

	assert.Len(t, messenger.texts, 1)
	assert.Empty(t, messenger.documents)
}

func TestDeliverInlineTransportFailure(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.sendTextErr = errors.New("connection reset")
	dispatcher := NewDispatcher(messenger, logger.NewNop())

	err := dispatcher.Deliver(1, "short text")
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
}

func TestDeliverDocumentTransportFailure(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.sendDocumentErr = errors.New("connection reset")
	dispatcher := NewDispatcher(messenger, logger.NewNop())

	err := dispatcher.Deliver(1, strings.Repeat("a", 5000))
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
}
