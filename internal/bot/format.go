package bot

import (
	"fmt"

	"campus-market-bot/internal/storage"
)

func formatWelcome(channel string) string {
	return fmt.Sprintf(MsgWelcomeFmt, channel)
}

func formatAdminPending(count int) string {
	return fmt.Sprintf(MsgAdminPendingFmt, count)
}

// userLink builds a Markdown deep link to a Telegram user.
func userLink(user *storage.User) string {
	name := user.DisplayName()
	if name == "" {
		name = fmt.Sprintf("user %d", user.ID)
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", escapeMarkdown(name), user.ID)
}

func userIDLink(userId int64) string {
	return fmt.Sprintf("[seller](tg://user?id=%d)", userId)
}

// formatProductSummary is the short product card used in admin review and
// browsing. Long descriptions are truncated.
func formatProductSummary(p *storage.Product) string {
	desc := p.Description
	if len(desc) > 200 {
		desc = desc[:200] + "..."
	}
	text := fmt.Sprintf("🏷️ *%s*\n💰 *Price:* %d ETB\n📂 *Category:* %s",
		escapeMarkdown(p.Title), p.Price, escapeMarkdown(p.Category))
	if desc != "" {
		text += "\n\n" + escapeMarkdown(desc)
	}
	return text
}

// formatChannelCaption is the full caption for a channel post.
func formatChannelCaption(p *storage.Product) string {
	text := fmt.Sprintf("🏷️ *%s*\n\n💰 *Price:* %d ETB\n📂 *Category:* %s\n",
		escapeMarkdown(p.Title), p.Price, escapeMarkdown(p.Category))
	if p.Description != "" {
		text += "\n" + escapeMarkdown(p.Description) + "\n"
	}
	text += fmt.Sprintf("\n👤 Seller: %s", userIDLink(p.SellerID))
	return text
}

func formatOwnProduct(p *storage.Product) string {
	return fmt.Sprintf("🏷️ *%s*\n💰 %d ETB\n📂 %s\nStatus: %s",
		escapeMarkdown(p.Title), p.Price, escapeMarkdown(p.Category), p.Status)
}

// formatReviewRequest is the message sent to each admin on fan-out.
func formatReviewRequest(p *storage.Product, seller *storage.User) string {
	return fmt.Sprintf(MsgAdminReview+"\nSubmitted: %s",
		formatProductSummary(p), userLink(seller), p.CreatedAt.Format("2006-01-02 15:04"))
}
