package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market-bot/internal/storage"
)

func seedUsers(t *testing.T, store *mockStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.UpsertUser(&storage.User{ID: int64(i), FirstName: fmt.Sprintf("User%d", i)}))
	}
}

func TestBroadcastReachesAllUsers(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 3)

	tally := b.broadcaster.Run(42, "Library closes early today")

	assert.Equal(t, Tally{Sent: 3, Failed: 0}, tally)

	delivered := 0
	for _, text := range tg.texts() {
		if text == "Library closes early today" {
			delivered++
		}
	}
	assert.Equal(t, 3, delivered)
}

func TestBroadcastCountsFailures(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 4)

	tg.sendErr = func(c tgbotapi.Chattable) error {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == 2 {
			return errors.New("bot was blocked by the user")
		}
		return nil
	}

	tally := b.broadcaster.Run(42, "hello")

	assert.Equal(t, Tally{Sent: 3, Failed: 1}, tally)
	assert.True(t, tg.containsText("3 sent, 1 failed"))
}

func TestBroadcastEditsProgressMessage(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 25)

	tally := b.broadcaster.Run(42, "ping")

	assert.Equal(t, 25, tally.Sent)

	var edits []string
	tg.mu.Lock()
	for _, c := range tg.sent {
		if edit, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			edits = append(edits, edit.Text)
		}
	}
	tg.mu.Unlock()

	// Edited at 10, 20 and once more with the final summary
	require.Len(t, edits, 3)
	assert.Contains(t, edits[0], "(10/25)")
	assert.Contains(t, edits[1], "(20/25)")
	assert.Contains(t, edits[2], "Broadcast complete")
}

func TestBroadcastCommandRequiresAdmin(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 2)

	handle(b, makeTextUpdate(1, "/broadcast exam schedule posted"))

	for _, text := range tg.texts() {
		assert.False(t, strings.Contains(text, "exam schedule posted"),
			"non-admin broadcast must not be delivered")
	}
}

func TestBroadcastCommandWithoutTextShowsUsage(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 2)

	handle(b, makeTextUpdate(42, "/broadcast"))

	assert.Equal(t, MsgBroadcastUsage, tg.lastText())
}

func TestBroadcastCommandDeliversToUsers(t *testing.T) {
	tg, store, b := setup(t, 42)
	seedUsers(t, store, 2)

	handle(b, makeTextUpdate(42, "/broadcast exam schedule posted"))

	delivered := 0
	for _, text := range tg.texts() {
		if text == "exam schedule posted" {
			delivered++
		}
	}
	// The admin is a known user too
	assert.GreaterOrEqual(t, delivered, 2)
}
