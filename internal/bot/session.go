package bot

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Step is a position in the product submission conversation.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingImages
	StepAwaitingTitle
	StepAwaitingPrice
	StepAwaitingDescription
	StepAwaitingCategory
	StepVerifyDepartment
	StepVerifyYear
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAwaitingImages:
		return "awaiting_images"
	case StepAwaitingTitle:
		return "awaiting_title"
	case StepAwaitingPrice:
		return "awaiting_price"
	case StepAwaitingDescription:
		return "awaiting_description"
	case StepAwaitingCategory:
		return "awaiting_category"
	case StepVerifyDepartment:
		return "verify_department"
	case StepVerifyYear:
		return "verify_year"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Draft accumulates product fields entered during the submission flow.
type Draft struct {
	Images      []string
	Title       string
	Price       int
	Description string
	Category    string

	// Verification flow scratch field
	Department string
}

// MessageSender abstracts the ability to send Telegram messages.
// This interface decouples UserSession from the full Bot struct,
// improving testability.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UserSession holds one user's conversation state. Sessions live only in
// memory; they do not survive a restart.
type UserSession struct {
	userId int64
	sender MessageSender
	mu     sync.Mutex

	step  Step
	draft Draft
}

// escapeMarkdown escapes special characters for Telegram Markdown V1
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "*", "\\*")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "[", "\\[")
	return text
}

// reset clears the session back to idle, discarding any draft.
func (s *UserSession) reset() {
	log.Info().Int64("userId", s.userId).Str("step", s.step.String()).Msg("reset user session")
	s.step = StepIdle
	s.draft = Draft{}
}

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Int64("userId", s.userId).Send()
	return s._reply(MsgUnexpectedErr, false)
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	}
	return sent
}

func (s *UserSession) _reply(text string, removeReplyKeyboard bool) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      text,
		ParseMode: tgbotapi.ModeMarkdown,
	}
	if removeReplyKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return s.replyWithMessage(msg)
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	if len(a) > 0 {
		text = fmt.Sprintf(text, a...)
	}
	return s._reply(text, false)
}

// replyAndRemoveCustomKeyboard sends a text as reply while removing any
// existing custom reply keyboard. In telegram, bot's custom keyboards will
// remain as long as a new one is sent or the current one is removed.
func (s *UserSession) replyAndRemoveCustomKeyboard(text string, a ...any) tgbotapi.Message {
	if len(a) > 0 {
		text = fmt.Sprintf(text, a...)
	}
	return s._reply(text, true)
}
