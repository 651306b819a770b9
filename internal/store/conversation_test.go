package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glokal-ai/docchat/internal/model"
)

func botWithAlternatives(alts []string, active int) model.Message {
	return model.Message{
		Sender:       model.SenderBot,
		Text:         alts[active],
		Alternatives: alts,
		ActiveIndex:  active,
	}
}

func TestNavigateWrapsCircularly(t *testing.T) {
	tests := []struct {
		name      string
		active    int
		direction int
		expected  int
	}{
		{"backward from first wraps to last", 0, -1, 2},
		{"forward from last wraps to first", 2, +1, 0},
		{"forward moves one", 0, +1, 1},
		{"backward moves one", 2, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewConversationLog()
			log.Append(botWithAlternatives([]string{"a", "b", "c"}, tt.active))

			require.True(t, log.Navigate(0, tt.direction))

			msg, ok := log.Message(0)
			require.True(t, ok)
			require.Equal(t, tt.expected, msg.ActiveIndex)
			require.Equal(t, msg.Alternatives[tt.expected], msg.Text)
		})
	}
}

func TestNavigateNoOpWithoutAlternatives(t *testing.T) {
	log := NewConversationLog()
	log.Append(model.Message{Sender: model.SenderBot, Text: "only"})
	log.Append(botWithAlternatives([]string{"solo"}, 0))

	require.False(t, log.Navigate(0, +1))
	require.False(t, log.Navigate(1, +1))
	require.False(t, log.Navigate(5, +1))
	require.False(t, log.Navigate(-1, +1))

	msg, _ := log.Message(0)
	require.Equal(t, "only", msg.Text)
}

func TestApplyRegenerationSeedsAlternatives(t *testing.T) {
	log := NewConversationLog()
	log.Append(model.Message{Sender: model.SenderBot, Text: "original"})

	require.True(t, log.ApplyRegeneration(0, "regenerated", 1))

	msg, _ := log.Message(0)
	require.Equal(t, []string{"original", "regenerated"}, msg.Alternatives)
	require.Equal(t, 1, msg.ActiveIndex)
	require.Equal(t, "regenerated", msg.Text)
	require.Equal(t, 1, msg.RegenerationCount)
}

func TestApplyRegenerationAppendsAndTakesServerCount(t *testing.T) {
	log := NewConversationLog()
	log.Append(botWithAlternatives([]string{"one", "two"}, 0))

	// Server count is authoritative, not a local increment.
	require.True(t, log.ApplyRegeneration(0, "three", 2))

	msg, _ := log.Message(0)
	require.Equal(t, []string{"one", "two", "three"}, msg.Alternatives)
	require.Equal(t, 2, msg.ActiveIndex)
	require.Equal(t, 2, msg.RegenerationCount)
}

func TestApplyRegenerationRejectsNonBot(t *testing.T) {
	log := NewConversationLog()
	log.Append(model.Message{Sender: model.SenderUser, Text: "question"})

	require.False(t, log.ApplyRegeneration(0, "new", 1))
	require.False(t, log.ApplyRegeneration(7, "new", 1))

	msg, _ := log.Message(0)
	require.Equal(t, "question", msg.Text)
	require.Empty(t, msg.Alternatives)
}

func TestReplaceDiscardsPreviousMessages(t *testing.T) {
	log := NewConversationLog()
	for i := 0; i < 5; i++ {
		log.Append(model.Message{Sender: model.SenderUser, Text: "old"})
	}

	log.Replace([]model.Message{{Sender: model.SenderBot, Text: "new"}})

	require.Equal(t, 1, log.Len())
	msg, _ := log.Message(0)
	require.Equal(t, "new", msg.Text)
}

func TestMessagesReturnsCopy(t *testing.T) {
	log := NewConversationLog()
	log.Append(model.Message{Sender: model.SenderBot, Text: "a"})

	snapshot := log.Messages()
	snapshot[0].Text = "mutated"

	msg, _ := log.Message(0)
	require.Equal(t, "a", msg.Text)
}
