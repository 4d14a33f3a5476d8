package bot

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"campus-market-bot/internal/storage"
)

// maxImages is the cap on photos per product.
const maxImages = 5

// startSellFlow begins the guided submission conversation. A new /sell while
// mid-flow discards the previous draft (last start wins).
func (b *Bot) startSellFlow(session *UserSession) {
	joined, err := b.checkChannelMembership(session.userId)
	if err != nil {
		log.Warn().Err(err).Int64("userId", session.userId).Msg("channel membership check failed")
		joined = false
	}
	if err := b.store.SetJoinedChannel(session.userId, joined); err != nil {
		log.Warn().Err(err).Int64("userId", session.userId).Msg("failed to persist joined_channel")
	}
	if !joined {
		session.reply(MsgMustJoinChannel, b.channel)
		return
	}

	session.step = StepAwaitingImages
	session.draft = Draft{Images: []string{}}
	session.reply(MsgFlowStart)
}

// handleFlowPhoto accepts a photo while collecting images. Photos outside the
// image step are ignored.
func (b *Bot) handleFlowPhoto(session *UserSession, message *tgbotapi.Message) {
	if session.step != StepAwaitingImages {
		return
	}
	if len(session.draft.Images) >= maxImages {
		session.reply(MsgPhotoLimit)
		return
	}

	// message.Photo is an array of PhotoSizes and the last one is the largest size
	largest := message.Photo[len(message.Photo)-1]
	session.draft.Images = append(session.draft.Images, largest.FileID)
	log.Info().Int64("userId", session.userId).Int("count", len(session.draft.Images)).Msg("added photo to draft")

	if len(session.draft.Images) >= maxImages {
		// Full set collected, advance without waiting for /done
		session.reply(MsgPhotosComplete)
		session.step = StepAwaitingTitle
		session.reply(MsgAskTitle)
		return
	}
	session.reply(MsgPhotoReceived, len(session.draft.Images))
}

// handleDone finishes the image collection step.
func (b *Bot) handleDone(session *UserSession) {
	if session.step != StepAwaitingImages {
		return
	}
	if len(session.draft.Images) == 0 {
		session.reply(MsgNeedOnePhoto)
		return
	}
	session.step = StepAwaitingTitle
	session.reply(MsgAskTitle)
}

// handleCancel aborts any in-progress flow without creating a product.
func (b *Bot) handleCancel(session *UserSession) {
	if session.step == StepIdle {
		session.reply(MsgNothingToDo)
		return
	}
	session.reset()
	session.replyAndRemoveCustomKeyboard(MsgCancelled)
}

// handleFlowText advances the conversation with a text input. Returns true
// when the text was consumed by the flow.
func (b *Bot) handleFlowText(session *UserSession, text string) bool {
	switch session.step {
	case StepAwaitingImages:
		// Stray text while collecting photos is deliberately ignored
		return true

	case StepAwaitingTitle:
		title := strings.TrimSpace(text)
		if title == "" {
			session.reply(MsgTitleEmpty)
			return true
		}
		session.draft.Title = title
		session.step = StepAwaitingPrice
		session.reply(MsgAskPrice)
		return true

	case StepAwaitingPrice:
		price, ok := parsePrice(text)
		if !ok {
			session.reply(MsgPriceInvalid)
			return true
		}
		session.draft.Price = price
		session.step = StepAwaitingDescription
		session.reply(MsgAskDescription)
		return true

	case StepAwaitingDescription:
		desc := strings.TrimSpace(text)
		if strings.EqualFold(desc, "skip") {
			desc = ""
		}
		session.draft.Description = desc
		session.step = StepAwaitingCategory
		msg := tgbotapi.NewMessage(session.userId, MsgAskCategory)
		msg.ReplyMarkup = categoryKeyboard()
		session.replyWithMessage(msg)
		return true

	case StepAwaitingCategory:
		session.draft.Category = normalizeCategory(strings.TrimSpace(text))
		b.finishSubmission(session)
		return true

	case StepVerifyDepartment, StepVerifyYear:
		b.handleVerifyText(session, text)
		return true
	}
	return false
}

// parsePrice parses a positive price, tolerating thousands separators
// ("1,500" -> 1500). The result is rounded to the nearest integer.
func parsePrice(text string) (int, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(f + 0.5), true
}

// finishSubmission materializes the draft as a pending product and fans out
// the admin review request. On storage failure the session is left untouched
// so the user can retry the category step.
func (b *Bot) finishSubmission(session *UserSession) {
	now := time.Now()
	product := &storage.Product{
		ID:          uuid.NewString(),
		SellerID:    session.userId,
		Title:       session.draft.Title,
		Description: session.draft.Description,
		Price:       session.draft.Price,
		Category:    session.draft.Category,
		Images:      session.draft.Images,
		Status:      storage.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.store.CreateProduct(product); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to create product")
		session.reply(MsgStorageErr)
		return
	}

	session.reset()
	session.replyAndRemoveCustomKeyboard(MsgSubmitted, escapeMarkdown(product.Title), b.channel)
	log.Info().Str("productId", product.ID).Int64("sellerId", product.SellerID).Msg("product submitted for review")

	seller, err := b.store.GetUser(product.SellerID)
	if err != nil {
		log.Warn().Err(err).Int64("sellerId", product.SellerID).Msg("failed to load seller for fan-out")
		seller = &storage.User{ID: product.SellerID}
	}

	b.publisher.NotifyAdmins(product, seller)
}

// --- Verification flow (/verify) ---

func (b *Bot) startVerification(session *UserSession) {
	session.step = StepVerifyDepartment
	session.draft = Draft{}
	session.reply(MsgVerifyAskDept)
}

func (b *Bot) handleVerifyText(session *UserSession, text string) {
	switch session.step {
	case StepVerifyDepartment:
		dept := strings.TrimSpace(text)
		if dept == "" {
			session.reply(MsgVerifyDeptEmpty)
			return
		}
		session.draft.Department = dept
		session.step = StepVerifyYear
		session.reply(MsgVerifyAskYear)

	case StepVerifyYear:
		year := strings.TrimSpace(text)
		if err := b.store.SetUserVerification(session.userId, session.draft.Department, year); err != nil {
			log.Error().Err(err).Int64("userId", session.userId).Msg("failed to save verification")
			session.reply(MsgStorageErr)
			return
		}
		session.reset()
		session.reply(MsgVerifySaved)
	}
}
