package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Categories is the fixed category list presented during submission and
// browsing. Typed free-text categories are stored as-is.
var Categories = []string{"Books", "Electronics", "Clothes", "Furniture", "Study Materials", "Other"}

// normalizeCategory keeps free-text category input verbatim, defaulting to
// "Other" when blank.
func normalizeCategory(text string) string {
	if text == "" {
		return "Other"
	}
	return text
}

const (
	BtnSellItem   = "➕ Sell Item"
	BtnBrowse     = "🛍️ Browse Products"
	BtnMyProducts = "📋 My Products"
	BtnHelp       = "ℹ️ Help"

	BtnApprove = "✅ Approve"
	BtnReject  = "❌ Reject"
	BtnBuy     = "🛒 BUY"
	BtnContact = "💬 CONTACT SELLER"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSellItem),
			tgbotapi.NewKeyboardButton(BtnBrowse),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnMyProducts),
			tgbotapi.NewKeyboardButton(BtnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(Categories))
	for _, c := range Categories {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// reviewKeyboard is the approve/reject control row sent to admins.
func reviewKeyboard(productID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnApprove, "approve:"+productID),
			tgbotapi.NewInlineKeyboardButtonData(BtnReject, "reject:"+productID),
		),
	)
}

// actionsKeyboard is the buy/contact control row attached to channel posts.
func actionsKeyboard(productID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnBuy, "buy:"+productID),
			tgbotapi.NewInlineKeyboardButtonData(BtnContact, "contact:"+productID),
		),
	)
}
