package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// BotState holds one session per user id. Sessions for different users never
// interact; a user's own updates are serialized by the session mutex.
type BotState struct {
	bot      *Bot
	mu       sync.Mutex
	sessions map[int64]*UserSession
}

func (b *Bot) NewBotState() BotState {
	return BotState{
		bot:      b,
		sessions: make(map[int64]*UserSession),
	}
}

func (bs *BotState) getUserSession(userId int64) *UserSession {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	session, ok := bs.sessions[userId]
	if !ok {
		session = &UserSession{
			userId: userId,
			sender: bs.bot.tg,
			step:   StepIdle,
		}
		bs.sessions[userId] = session
		log.Info().Int64("userId", userId).Msg("new user session created")
	}
	return session
}
