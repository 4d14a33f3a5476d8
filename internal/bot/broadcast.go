package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"campus-market-bot/internal/storage"
)

// progressEvery controls how often the broadcast progress message is edited.
const progressEvery = 10

// Tally is the outcome of a broadcast run.
type Tally struct {
	Sent   int
	Failed int
}

// Broadcaster sends an admin message to every known user, sequentially with
// an inter-send delay, capturing failures per recipient.
type Broadcaster struct {
	tg        BotAPI
	store     storage.Store
	sendDelay time.Duration
}

func NewBroadcaster(tg BotAPI, store storage.Store, sendDelay time.Duration) *Broadcaster {
	return &Broadcaster{tg: tg, store: store, sendDelay: sendDelay}
}

// Run broadcasts text to all known users and reports progress back to the
// initiating admin by editing a single message instead of spamming new ones.
// A failed send never aborts the loop.
func (b *Broadcaster) Run(adminChatID int64, text string) Tally {
	ids, err := b.store.ListUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("failed to list users for broadcast")
		b.send(adminChatID, MsgStorageErr)
		return Tally{}
	}

	progress, err := b.tg.Send(tgbotapi.NewMessage(adminChatID, fmt.Sprintf(MsgBroadcastProgress, 0, 0, 0, len(ids))))
	if err != nil {
		log.Warn().Err(err).Msg("failed to send broadcast progress message")
	}

	var tally Tally
	for i, id := range ids {
		if i > 0 && b.sendDelay > 0 {
			time.Sleep(b.sendDelay)
		}
		if _, err := b.tg.Send(tgbotapi.NewMessage(id, text)); err != nil {
			log.Warn().Err(err).Int64("userId", id).Msg("broadcast send failed")
			tally.Failed++
		} else {
			tally.Sent++
		}

		done := i + 1
		if progress.MessageID != 0 && done%progressEvery == 0 && done < len(ids) {
			b.editProgress(adminChatID, progress.MessageID,
				fmt.Sprintf(MsgBroadcastProgress, tally.Sent, tally.Failed, done, len(ids)))
		}
	}

	final := fmt.Sprintf(MsgBroadcastDone, tally.Sent, tally.Failed)
	if progress.MessageID != 0 {
		b.editProgress(adminChatID, progress.MessageID, final)
	} else {
		b.send(adminChatID, final)
	}
	return tally
}

func (b *Broadcaster) editProgress(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.tg.Send(edit); err != nil {
		log.Debug().Err(err).Msg("failed to edit broadcast progress")
	}
}

func (b *Broadcaster) send(chatID int64, text string) {
	if _, err := b.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Warn().Err(err).Int64("chatId", chatID).Msg("failed to send message")
	}
}
