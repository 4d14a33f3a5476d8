package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market-bot/internal/storage"
)

func startFlow(b *Bot, userId int64) {
	handle(b, makeTextUpdate(userId, "/sell"))
}

func TestSellRequiresChannelMembership(t *testing.T) {
	tg, _, b := setup(t)
	tg.memberStatus = "left"

	startFlow(b, 1)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepIdle, session.step)
	assert.True(t, tg.containsText("must join @testchannel"))
}

func TestSellStartsImageCollection(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepAwaitingImages, session.step)
	assert.NotNil(t, session.draft.Images)
	assert.True(t, tg.containsText("Step 1/4"))
}

func TestPhotoAppendsToDraft(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)
	handle(b, makePhotoUpdate(1, "photo-1"))

	session := b.state.getUserSession(1)
	assert.Equal(t, []string{"photo-1"}, session.draft.Images)
	assert.Equal(t, StepAwaitingImages, session.step)
	assert.True(t, tg.containsText("(1/5)"))
}

func TestFifthPhotoAutoAdvances(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)
	for i := 1; i <= 5; i++ {
		handle(b, makePhotoUpdate(1, fmt.Sprintf("photo-%d", i)))
	}

	session := b.state.getUserSession(1)
	assert.Len(t, session.draft.Images, 5)
	assert.Equal(t, StepAwaitingTitle, session.step)
	assert.True(t, tg.containsText(MsgAskTitle))
}

func TestSixthPhotoDoesNotGrowDraft(t *testing.T) {
	_, _, b := setup(t)

	startFlow(b, 1)
	for i := 1; i <= 6; i++ {
		handle(b, makePhotoUpdate(1, fmt.Sprintf("photo-%d", i)))
	}

	session := b.state.getUserSession(1)
	assert.Len(t, session.draft.Images, 5)
	assert.Equal(t, StepAwaitingTitle, session.step)
}

func TestDoneWithoutPhotosReprompts(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)
	handle(b, makeTextUpdate(1, "/done"))

	session := b.state.getUserSession(1)
	assert.Equal(t, StepAwaitingImages, session.step)
	assert.Equal(t, MsgNeedOnePhoto, tg.lastText())
}

func TestStrayTextDuringImagesIsIgnored(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)
	before := len(tg.texts())
	handle(b, makeTextUpdate(1, "hello there"))

	session := b.state.getUserSession(1)
	assert.Equal(t, StepAwaitingImages, session.step)
	assert.Len(t, tg.texts(), before)
}

func TestEmptyTitleReprompts(t *testing.T) {
	tg, _, b := setup(t)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "photo-1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "   "),
	)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepAwaitingTitle, session.step)
	assert.Equal(t, MsgTitleEmpty, tg.lastText())
}

func TestPriceValidation(t *testing.T) {
	for _, invalid := range []string{"abc", "-5", "0"} {
		t.Run(invalid, func(t *testing.T) {
			tg, _, b := setup(t)
			startFlow(b, 1)
			handle(b,
				makePhotoUpdate(1, "photo-1"),
				makeTextUpdate(1, "/done"),
				makeTextUpdate(1, "Some Title"),
				makeTextUpdate(1, invalid),
			)

			session := b.state.getUserSession(1)
			assert.Equal(t, StepAwaitingPrice, session.step)
			assert.Equal(t, MsgPriceInvalid, tg.lastText())
		})
	}
}

func TestPriceWithThousandsSeparator(t *testing.T) {
	_, _, b := setup(t)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "photo-1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "Some Title"),
		makeTextUpdate(1, "1,500"),
	)

	session := b.state.getUserSession(1)
	assert.Equal(t, 1500, session.draft.Price)
	assert.Equal(t, StepAwaitingDescription, session.step)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"800", 800, true},
		{"1,500", 1500, true},
		{"99.5", 100, true},
		{" 250 ", 250, true},
		{"abc", 0, false},
		{"-5", 0, false},
		{"0", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parsePrice(c.input)
		assert.Equal(t, c.ok, ok, "input %q", c.input)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.input)
		}
	}
}

func TestSkipDescription(t *testing.T) {
	_, store, b := setup(t, 42)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "photo-1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "Some Title"),
		makeTextUpdate(1, "800"),
		makeTextUpdate(1, "skip"),
		makeTextUpdate(1, "Books"),
	)

	product := store.singleProduct(t)
	assert.Equal(t, "", product.Description)
}

func TestFreeTextCategoryIsKeptVerbatim(t *testing.T) {
	_, store, b := setup(t, 42)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "photo-1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "Some Title"),
		makeTextUpdate(1, "800"),
		makeTextUpdate(1, "a nice thing"),
		makeTextUpdate(1, "Academic Books"),
	)

	product := store.singleProduct(t)
	assert.Equal(t, "Academic Books", product.Category)
}

func TestCancelMidFlowLeavesNoProduct(t *testing.T) {
	tg, store, b := setup(t)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "photo-1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "Some Title"),
		makeTextUpdate(1, "/cancel"),
	)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepIdle, session.step)
	assert.Empty(t, store.products)
	assert.Equal(t, MsgCancelled, tg.lastText())
}

func TestNewSellOverwritesExistingDraft(t *testing.T) {
	_, _, b := setup(t)

	startFlow(b, 1)
	handle(b, makePhotoUpdate(1, "photo-1"))
	startFlow(b, 1)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepAwaitingImages, session.step)
	assert.Empty(t, session.draft.Images)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	_, _, b := setup(t)

	startFlow(b, 1)
	handle(b, makePhotoUpdate(1, "photo-1"))
	startFlow(b, 2)

	assert.Len(t, b.state.getUserSession(1).draft.Images, 1)
	assert.Empty(t, b.state.getUserSession(2).draft.Images)
}

func TestFullFlowCreatesPendingProduct(t *testing.T) {
	tg, store, b := setup(t, 42)

	startFlow(b, 1)
	handle(b,
		makePhotoUpdate(1, "P1"),
		makeTextUpdate(1, "/done"),
		makeTextUpdate(1, "Calculus Textbook"),
		makeTextUpdate(1, "800"),
		makeTextUpdate(1, "skip"),
		makeTextUpdate(1, "Study Materials"),
	)

	product := store.singleProduct(t)
	assert.Equal(t, "Calculus Textbook", product.Title)
	assert.Equal(t, 800, product.Price)
	assert.Equal(t, "", product.Description)
	assert.Equal(t, "Study Materials", product.Category)
	assert.Equal(t, []string{"P1"}, product.Images)
	assert.Equal(t, storage.StatusPending, product.Status)
	assert.Equal(t, int64(1), product.SellerID)

	session := b.state.getUserSession(1)
	assert.Equal(t, StepIdle, session.step)

	// Admin fan-out fired with review controls
	require.True(t, tg.containsText("pending review"))
	assert.True(t, tg.containsText("Calculus Textbook"))
}
