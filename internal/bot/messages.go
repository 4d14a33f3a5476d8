package bot

import "github.com/lithammer/dedent"

// =============================================================================
// General messages
// =============================================================================

const (
	MsgUnexpectedErr = "⚠️ An error occurred, please try again."
	MsgStorageErr    = "⚠️ Something went wrong on our side. Please try again in a moment."
	MsgCancelled     = "❌ Product creation cancelled."
	MsgNothingToDo   = "Nothing to cancel. Send /sell to start listing a product."
)

// =============================================================================
// Submission flow messages
// =============================================================================

const (
	MsgFlowStart = "📸 *Add Product - Step 1/4*\nSend up to 5 product photos (send one at a time). When done, send /done."

	MsgPhotoReceived   = "✅ Photo received (%d/5). Send more or /done to continue."
	MsgPhotoLimit      = "⚠️ You already uploaded 5 images (max). Send /done to continue."
	MsgPhotosComplete  = "✅ 5 photos added."
	MsgNeedOnePhoto    = "⚠️ You must upload at least one photo. Send a photo now or cancel with /cancel."
	MsgAskTitle        = "🏷️ *Step 2/4 - Product Title*\nSend the product title:"
	MsgTitleEmpty      = "⚠️ Title cannot be empty. Send the product title:"
	MsgAskPrice        = "💰 *Step 3/4 - Price*\nSend price in ETB (numbers only):"
	MsgPriceInvalid    = "❌ Invalid price. Send a number (e.g., 1500)."
	MsgAskDescription  = "✍️ *Step 4/4 - Description*\nSend a short description (or type \"skip\"):"
	MsgAskCategory     = "📂 Select a category:"
	MsgSubmitted       = "✅ Product submitted for review. Title: *%s*\nAn admin will approve it before it is posted to %s."
	MsgMustJoinChannel = "🚫 You must join %s before adding products. Please join and then press /start again."
)

// =============================================================================
// Moderation messages
// =============================================================================

const (
	MsgAdminReview      = "🆕 New product pending review:\n\n%s\n\nSeller: %s"
	MsgNotAdmin         = "You are not admin."
	MsgProductNotFound  = "Product not found."
	MsgAlreadyHandled   = "Already handled."
	MsgApprovedAck      = "Product approved and posted."
	MsgRejectedAck      = "Product rejected."
	MsgAdminApprovedFmt = "✅ Approved: %s"
	MsgAdminRejectedFmt = "❌ Rejected: %s"
	MsgSellerApproved   = "🎉 Your product \"%s\" has been approved and posted to %s!"
	MsgSellerRejected   = "❌ Your product \"%s\" was rejected. Common reasons: image quality, inappropriate content, missing info. Contact an admin for details."
	MsgNoPending        = "No pending products at the moment."
)

// =============================================================================
// Buyer action messages
// =============================================================================

const (
	MsgProductUnavailable = "Product not available."
	MsgBuyAck             = "Seller notified!"
	MsgContactAck         = "Contacting seller..."
	MsgBuyerToSeller      = "🛒 %s wants to buy your product: *%s*.\nMessage them: %s\nSuggest a meetup spot on campus."
	MsgBuyerConfirm       = "✅ Seller has been notified. You can message them directly: %s\nSuggest a meetup spot on campus."
	MsgInterestToSeller   = "💬 A buyer (%s) is interested in your product: *%s*.\nMessage them: %s"
	MsgContactConfirm     = "✅ Seller has been notified. You can message them directly: %s"
)

// =============================================================================
// Browse / my products / verification
// =============================================================================

const (
	MsgBrowsePrompt    = "Select a category to browse:"
	MsgBrowseEmpty     = "No approved products in %s yet."
	MsgNoOwnProducts   = "📋 You have not listed any products."
	MsgVerifyAskDept   = "📚 Verification — Send your department (e.g., Civil Eng, CSE, Biology):"
	MsgVerifyAskYear   = "🗓️ Now send your year of study (e.g., 1, 2, 3, 4):"
	MsgVerifySaved     = "✅ Verification saved. Thank you!"
	MsgVerifyDeptEmpty = "⚠️ Department cannot be empty. Send your department:"
)

// =============================================================================
// Broadcast
// =============================================================================

const (
	MsgBroadcastUsage    = "Usage: /broadcast <message>"
	MsgBroadcastProgress = "📣 Broadcasting... %d sent, %d failed (%d/%d)"
	MsgBroadcastDone     = "📣 Broadcast complete: %d sent, %d failed."
)

// =============================================================================
// Start / help
// =============================================================================

const (
	MsgAdminPendingFmt = "\n*Admin:* %d pending products to review."
	MsgWelcomeFmt      = "🎓 *Welcome to the Campus Marketplace!*\n\nBuy & sell within your university.\n\n🔔 *Important:* You must join %s to post items."
)

var helpText = dedent.Dedent(`
	ℹ️ *Campus Marketplace Help*

	*How to Sell:*
	1. Press "➕ Sell Item" or send /sell
	2. Upload 1-5 photos, send /done
	3. Send title, price, description, category
	4. An admin will review and post it to the channel

	*How to Buy:*
	1. Browse the channel or use /browse in the bot
	2. Use the BUY or CONTACT SELLER buttons on a post

	*Need Help?* Contact an admin.`)
