package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"campus-market-bot/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Bot is the main Telegram update router.
type Bot struct {
	tg      BotAPI
	store   storage.Store
	state   BotState
	admins  map[int64]struct{}
	channel string

	publisher   *Publisher
	broadcaster *Broadcaster
}

// NewBot creates a new Bot instance. admins is the static moderation
// allowlist; channel is the public channel username approved products are
// posted to; sendDelay spaces out bulk sends to respect rate limits.
func NewBot(tg BotAPI, store storage.Store, admins map[int64]struct{}, channel string, sendDelay time.Duration) *Bot {
	bot := &Bot{
		tg:      tg,
		store:   store,
		admins:  admins,
		channel: channel,
	}
	bot.state = bot.NewBotState()
	bot.publisher = NewPublisher(tg, store, admins, channel, sendDelay)
	bot.broadcaster = NewBroadcaster(tg, store, sendDelay)
	return bot
}

func (b *Bot) isAdmin(userId int64) bool {
	_, ok := b.admins[userId]
	return ok
}

// checkChannelMembership reports whether the user has joined the public
// channel. A transport error is treated as not joined.
func (b *Bot) checkChannelMembership(userId int64) (bool, error) {
	member, err := b.tg.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: b.channel,
			UserID:             userId,
		},
	})
	if err != nil {
		return false, err
	}
	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	default:
		return false, nil
	}
}

// HandleUpdate processes one inbound update. Each update runs on its own
// goroutine; the session mutex serializes a single user's transitions.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	message := update.Message
	userId := message.From.ID

	if err := b.store.UpsertUser(&storage.User{
		ID:        userId,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}); err != nil {
		log.Error().Err(err).Int64("userId", userId).Msg("failed to upsert user")
	}

	session := b.state.getUserSession(userId)
	session.mu.Lock()
	defer session.mu.Unlock()

	if len(message.Photo) > 0 {
		b.handleFlowPhoto(session, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	log.Info().Int64("userId", userId).Str("text", text).Str("step", session.step.String()).Msg("got message")

	switch command(text) {
	case "/start":
		b.handleStart(session)
	case "/help", BtnHelp:
		session.reply(helpText)
	case "/sell", "/addproduct", BtnSellItem:
		b.startSellFlow(session)
	case "/done":
		b.handleDone(session)
	case "/cancel":
		b.handleCancel(session)
	case "/verify":
		b.startVerification(session)
	case "/browse":
		b.handleBrowse(session, strings.TrimPrefix(text, "/browse"))
	case BtnBrowse:
		b.handleBrowse(session, "")
	case "/myproducts", BtnMyProducts:
		b.handleMyProducts(session)
	case "/pending":
		b.handleAdminPending(session)
	case "/broadcast":
		b.handleBroadcastCommand(session, strings.TrimSpace(strings.TrimPrefix(text, "/broadcast")))
	default:
		if b.handleFlowText(session, text) {
			return
		}
		// Category selection while browsing, or noise outside any flow
		if b.handleBrowseSelection(session, text) {
			return
		}
	}
}

// command normalizes a message text into a dispatch key. Commands keep only
// the first word so arguments (e.g. /broadcast hello) still match.
func command(text string) string {
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		cmd := fields[0]
		// Strip the @botname suffix used in groups
		if i := strings.Index(cmd, "@"); i > 0 {
			cmd = cmd[:i]
		}
		return cmd
	}
	return text
}

// handleStart greets the user and refreshes their channel membership flag.
func (b *Bot) handleStart(session *UserSession) {
	joined, err := b.checkChannelMembership(session.userId)
	if err == nil {
		if err := b.store.SetJoinedChannel(session.userId, joined); err != nil {
			log.Warn().Err(err).Int64("userId", session.userId).Msg("failed to persist joined_channel")
		}
	}

	welcome := strings.Builder{}
	welcome.WriteString(formatWelcome(b.channel))
	if b.isAdmin(session.userId) {
		count, err := b.store.CountByStatus(storage.StatusPending)
		if err != nil {
			log.Warn().Err(err).Msg("failed to count pending products")
		} else {
			welcome.WriteString(formatAdminPending(count))
		}
	}

	msg := tgbotapi.NewMessage(session.userId, welcome.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = mainMenuKeyboard()
	session.replyWithMessage(msg)
}

// handleBrowse shows the category keyboard, or lists a category directly when
// given as an argument.
func (b *Bot) handleBrowse(session *UserSession, arg string) {
	arg = strings.TrimSpace(arg)
	if arg != "" {
		b.listCategory(session, normalizeCategory(arg))
		return
	}
	msg := tgbotapi.NewMessage(session.userId, MsgBrowsePrompt)
	msg.ReplyMarkup = categoryKeyboard()
	session.replyWithMessage(msg)
}

// handleBrowseSelection consumes a category button press outside the
// submission flow. Returns true when the text named a known category.
func (b *Bot) handleBrowseSelection(session *UserSession, text string) bool {
	if session.step != StepIdle {
		return false
	}
	for _, c := range Categories {
		if text == c {
			b.listCategory(session, c)
			return true
		}
	}
	return false
}

func (b *Bot) listCategory(session *UserSession, category string) {
	products, err := b.store.ApprovedByCategory(category)
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(products) == 0 {
		session.replyAndRemoveCustomKeyboard(MsgBrowseEmpty, category)
		return
	}
	for i := range products {
		b.sendProductCard(session.userId, &products[i], nil)
	}
}

// handleMyProducts lists the user's own products with their review status.
func (b *Bot) handleMyProducts(session *UserSession) {
	products, err := b.store.ProductsBySeller(session.userId)
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(products) == 0 {
		session.reply(MsgNoOwnProducts)
		return
	}
	for i := range products {
		p := &products[i]
		text := formatOwnProduct(p)
		b.sendProductCardText(session.userId, p, text, nil)
	}
}

// handleAdminPending re-sends every pending product with review controls.
func (b *Bot) handleAdminPending(session *UserSession) {
	if !b.isAdmin(session.userId) {
		return
	}
	pending, err := b.store.ProductsByStatus(storage.StatusPending)
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(pending) == 0 {
		session.reply(MsgNoPending)
		return
	}
	for i := range pending {
		p := &pending[i]
		kb := reviewKeyboard(p.ID)
		b.sendProductCard(session.userId, p, &kb)
	}
}

// sendProductCard sends a product as a photo with caption when it has images,
// falling back to a plain text message.
func (b *Bot) sendProductCard(chatID int64, p *storage.Product, kb *tgbotapi.InlineKeyboardMarkup) {
	b.sendProductCardText(chatID, p, formatProductSummary(p), kb)
}

func (b *Bot) sendProductCardText(chatID int64, p *storage.Product, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if len(p.Images) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(p.Images[0]))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		if kb != nil {
			photo.ReplyMarkup = *kb
		}
		if _, err := b.tg.Send(photo); err == nil {
			return
		}
		// Invalid or expired media reference, fall back to text
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.tg.Send(msg); err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Str("productId", p.ID).Msg("failed to send product card")
	}
}

// handleBroadcastCommand starts an admin broadcast to all known users.
func (b *Bot) handleBroadcastCommand(session *UserSession, text string) {
	if !b.isAdmin(session.userId) {
		session.reply(MsgNotAdmin)
		return
	}
	if text == "" {
		session.reply(MsgBroadcastUsage)
		return
	}
	tally := b.broadcaster.Run(session.userId, text)
	log.Info().Int("sent", tally.Sent).Int("failed", tally.Failed).Msg("broadcast finished")
}

// handleCallback routes inline keyboard button presses.
func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	data := query.Data
	action, productID, ok := strings.Cut(data, ":")
	if !ok {
		return
	}
	log.Info().Int64("userId", query.From.ID).Str("data", data).Msg("got callback")

	switch action {
	case "approve":
		b.publisher.Approve(productID, query)
	case "reject":
		b.publisher.Reject(productID, query)
	case "buy":
		b.publisher.Buy(productID, query)
	case "contact":
		b.publisher.Contact(productID, query)
	}
}

// answerCallback acknowledges a button press with short feedback text.
func answerCallback(tg BotAPI, queryID, text string) {
	if _, err := tg.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		log.Warn().Err(err).Msg("failed to answer callback query")
	}
}

// isNotFound reports whether err means a missing record.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
