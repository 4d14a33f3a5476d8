package bot

import (
	"fmt"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"campus-market-bot/internal/storage"
)

// Publisher turns pending products into public listings or rejection notices
// and keeps sellers informed.
type Publisher struct {
	tg        BotAPI
	store     storage.Store
	admins    map[int64]struct{}
	channel   string
	sendDelay time.Duration
}

func NewPublisher(tg BotAPI, store storage.Store, admins map[int64]struct{}, channel string, sendDelay time.Duration) *Publisher {
	return &Publisher{
		tg:        tg,
		store:     store,
		admins:    admins,
		channel:   channel,
		sendDelay: sendDelay,
	}
}

func (p *Publisher) isAdmin(userId int64) bool {
	_, ok := p.admins[userId]
	return ok
}

// adminIDs returns the allowlist in a stable order.
func (p *Publisher) adminIDs() []int64 {
	ids := make([]int64, 0, len(p.admins))
	for id := range p.admins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NotifyAdmins delivers a review request with approve/reject controls to
// every admin. Sends are independent: one unreachable admin does not block
// the rest. Returns how many admins were notified successfully.
func (p *Publisher) NotifyAdmins(product *storage.Product, seller *storage.User) int {
	text := formatReviewRequest(product, seller)
	kb := reviewKeyboard(product.ID)

	notified := 0
	for i, adminID := range p.adminIDs() {
		if i > 0 && p.sendDelay > 0 {
			time.Sleep(p.sendDelay)
		}
		if err := p.sendReview(adminID, product, text, kb); err != nil {
			log.Warn().Err(err).Int64("adminId", adminID).Str("productId", product.ID).Msg("failed to notify admin")
			continue
		}
		notified++
	}
	log.Info().Str("productId", product.ID).Int("notified", notified).Int("admins", len(p.admins)).Msg("admin fan-out complete")
	return notified
}

// sendReview attempts a photo message with the first product image, falling
// back to text-only with the same controls.
func (p *Publisher) sendReview(adminID int64, product *storage.Product, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	if len(product.Images) > 0 {
		photo := tgbotapi.NewPhoto(adminID, tgbotapi.FileID(product.Images[0]))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = kb
		if _, err := p.tg.Send(photo); err == nil {
			return nil
		}
	}
	msg := tgbotapi.NewMessage(adminID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	_, err := p.tg.Send(msg)
	return err
}

// Approve transitions a pending product to approved, publishes it to the
// channel and notifies the seller. Safe under duplicate button clicks: only
// the first delivery mutates anything.
func (p *Publisher) Approve(productID string, query *tgbotapi.CallbackQuery) {
	adminID := query.From.ID
	if !p.isAdmin(adminID) {
		answerCallback(p.tg, query.ID, MsgNotAdmin)
		return
	}

	product, err := p.store.GetProduct(productID)
	if err != nil {
		if isNotFound(err) {
			answerCallback(p.tg, query.ID, MsgProductNotFound)
		} else {
			log.Error().Err(err).Str("productId", productID).Msg("failed to load product for approval")
			answerCallback(p.tg, query.ID, MsgUnexpectedErr)
		}
		return
	}

	ok, err := p.store.TransitionStatus(productID, storage.StatusPending, storage.StatusApproved, adminID)
	if err != nil {
		log.Error().Err(err).Str("productId", productID).Msg("failed to approve product")
		answerCallback(p.tg, query.ID, MsgUnexpectedErr)
		return
	}
	if !ok {
		// Already approved or rejected by another click
		answerCallback(p.tg, query.ID, MsgAlreadyHandled)
		return
	}
	log.Info().Str("productId", productID).Int64("adminId", adminID).Msg("product approved")

	// Channel publishing is best effort: approval stands even when the post
	// fails, so a later backfill can pick it up.
	messageIDs, err := p.publishToChannel(product)
	if err != nil {
		log.Error().Err(err).Str("productId", productID).Msg("failed to publish product to channel")
	}
	if len(messageIDs) > 0 {
		if err := p.store.SetChannelMessageIDs(productID, messageIDs); err != nil {
			log.Error().Err(err).Str("productId", productID).Msg("failed to persist channel message ids")
		}
	}

	p.notifySeller(product.SellerID, fmt.Sprintf(MsgSellerApproved, product.Title, p.channel))
	answerCallback(p.tg, query.ID, MsgApprovedAck)
	p.concludeReview(query, fmt.Sprintf(MsgAdminApprovedFmt, product.Title))
}

// Reject transitions a pending product to rejected and notifies the seller
// with a generic reasons list.
func (p *Publisher) Reject(productID string, query *tgbotapi.CallbackQuery) {
	adminID := query.From.ID
	if !p.isAdmin(adminID) {
		answerCallback(p.tg, query.ID, MsgNotAdmin)
		return
	}

	product, err := p.store.GetProduct(productID)
	if err != nil {
		if isNotFound(err) {
			answerCallback(p.tg, query.ID, MsgProductNotFound)
		} else {
			log.Error().Err(err).Str("productId", productID).Msg("failed to load product for rejection")
			answerCallback(p.tg, query.ID, MsgUnexpectedErr)
		}
		return
	}

	ok, err := p.store.TransitionStatus(productID, storage.StatusPending, storage.StatusRejected, adminID)
	if err != nil {
		log.Error().Err(err).Str("productId", productID).Msg("failed to reject product")
		answerCallback(p.tg, query.ID, MsgUnexpectedErr)
		return
	}
	if !ok {
		answerCallback(p.tg, query.ID, MsgAlreadyHandled)
		return
	}
	log.Info().Str("productId", productID).Int64("adminId", adminID).Msg("product rejected")

	p.notifySeller(product.SellerID, fmt.Sprintf(MsgSellerRejected, product.Title))
	answerCallback(p.tg, query.ID, MsgRejectedAck)
	p.concludeReview(query, fmt.Sprintf(MsgAdminRejectedFmt, product.Title))
}

// publishToChannel posts the product and returns every produced message id.
// Multi-image products are published as a media group; since a media group
// cannot carry an inline keyboard, the buy/contact controls go in a separate
// follow-up message.
func (p *Publisher) publishToChannel(product *storage.Product) ([]int, error) {
	caption := formatChannelCaption(product)
	kb := actionsKeyboard(product.ID)
	var messageIDs []int

	switch {
	case len(product.Images) > 1:
		media := make([]interface{}, 0, len(product.Images))
		for i, fileID := range product.Images {
			item := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(fileID))
			if i == 0 {
				// Telegram allows a caption on one media item only
				item.Caption = caption
				item.ParseMode = tgbotapi.ModeMarkdown
			}
			media = append(media, item)
		}
		group := tgbotapi.MediaGroupConfig{
			ChannelUsername: p.channel,
			Media:           media,
		}
		sent, err := p.tg.SendMediaGroup(group)
		if err != nil {
			return nil, fmt.Errorf("failed to send media group: %w", err)
		}
		for _, m := range sent {
			messageIDs = append(messageIDs, m.MessageID)
		}

		actions := tgbotapi.NewMessageToChannel(p.channel, fmt.Sprintf("Actions for: %s", product.Title))
		actions.ReplyMarkup = kb
		actionsMsg, err := p.tg.Send(actions)
		if err != nil {
			return messageIDs, fmt.Errorf("failed to send gallery actions message: %w", err)
		}
		messageIDs = append(messageIDs, actionsMsg.MessageID)

	case len(product.Images) == 1:
		photo := tgbotapi.NewPhotoToChannel(p.channel, tgbotapi.FileID(product.Images[0]))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = kb
		sent, err := p.tg.Send(photo)
		if err != nil {
			return nil, fmt.Errorf("failed to send channel photo: %w", err)
		}
		messageIDs = append(messageIDs, sent.MessageID)

	default:
		msg := tgbotapi.NewMessageToChannel(p.channel, caption)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = kb
		sent, err := p.tg.Send(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to send channel message: %w", err)
		}
		messageIDs = append(messageIDs, sent.MessageID)
	}
	return messageIDs, nil
}

// notifySeller sends a best-effort outcome notice to the seller.
func (p *Publisher) notifySeller(sellerID int64, text string) {
	msg := tgbotapi.NewMessage(sellerID, text)
	if _, err := p.tg.Send(msg); err != nil {
		log.Warn().Err(err).Int64("sellerId", sellerID).Msg("failed to notify seller")
	}
}

// concludeReview removes the review keyboard from the admin's message and
// posts a short outcome line in the admin chat.
func (p *Publisher) concludeReview(query *tgbotapi.CallbackQuery, outcome string) {
	if query.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(
			query.Message.Chat.ID,
			query.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
		)
		if _, err := p.tg.Request(edit); err != nil {
			log.Debug().Err(err).Msg("failed to clear review keyboard")
		}
		if _, err := p.tg.Send(tgbotapi.NewMessage(query.Message.Chat.ID, outcome)); err != nil {
			log.Debug().Err(err).Msg("failed to send review outcome")
		}
	}
}

// Buy handles the channel BUY button: both parties get each other's contact
// link. The product's status is untouched; sold is a separate transition.
func (p *Publisher) Buy(productID string, query *tgbotapi.CallbackQuery) {
	product, err := p.store.GetProduct(productID)
	if err != nil || product.Status != storage.StatusApproved {
		answerCallback(p.tg, query.ID, MsgProductUnavailable)
		return
	}

	buyer := buyerFromCallback(query)
	sellerMsg := tgbotapi.NewMessage(product.SellerID, fmt.Sprintf(
		MsgBuyerToSeller, userLink(buyer), escapeMarkdown(product.Title), fmt.Sprintf("tg://user?id=%d", buyer.ID)))
	sellerMsg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := p.tg.Send(sellerMsg); err != nil {
		log.Warn().Err(err).Int64("sellerId", product.SellerID).Msg("failed to notify seller of buy")
	}

	buyerMsg := tgbotapi.NewMessage(buyer.ID, fmt.Sprintf(MsgBuyerConfirm, fmt.Sprintf("tg://user?id=%d", product.SellerID)))
	if _, err := p.tg.Send(buyerMsg); err != nil {
		log.Warn().Err(err).Int64("buyerId", buyer.ID).Msg("failed to confirm buy to buyer")
	}
	answerCallback(p.tg, query.ID, MsgBuyAck)
}

// Contact handles the channel CONTACT SELLER button.
func (p *Publisher) Contact(productID string, query *tgbotapi.CallbackQuery) {
	product, err := p.store.GetProduct(productID)
	if err != nil || product.Status != storage.StatusApproved {
		answerCallback(p.tg, query.ID, MsgProductUnavailable)
		return
	}

	buyer := buyerFromCallback(query)
	sellerMsg := tgbotapi.NewMessage(product.SellerID, fmt.Sprintf(
		MsgInterestToSeller, userLink(buyer), escapeMarkdown(product.Title), fmt.Sprintf("tg://user?id=%d", buyer.ID)))
	sellerMsg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := p.tg.Send(sellerMsg); err != nil {
		log.Warn().Err(err).Int64("sellerId", product.SellerID).Msg("failed to notify seller of interest")
	}

	buyerMsg := tgbotapi.NewMessage(buyer.ID, fmt.Sprintf(MsgContactConfirm, fmt.Sprintf("tg://user?id=%d", product.SellerID)))
	if _, err := p.tg.Send(buyerMsg); err != nil {
		log.Warn().Err(err).Int64("buyerId", buyer.ID).Msg("failed to send seller contact to buyer")
	}
	answerCallback(p.tg, query.ID, MsgContactAck)
}

func buyerFromCallback(query *tgbotapi.CallbackQuery) *storage.User {
	return &storage.User{
		ID:        query.From.ID,
		Username:  query.From.UserName,
		FirstName: query.From.FirstName,
		LastName:  query.From.LastName,
	}
}
