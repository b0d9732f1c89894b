// Package telegram maps inbound updates to command handlers. The router is
// stateless: every update is classified and dispatched on its own, and all
// outbound traffic goes through the gateway.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alpharobocup/bot-all/internal/domain"
	"github.com/Alpharobocup/bot-all/internal/store"
)

// Gateway is the outbound surface the router needs. gateway.Gateway
// satisfies it.
type Gateway interface {
	Send(ctx context.Context, c tgbotapi.Chattable) error
	SendText(ctx context.Context, chat, text string) error
	SendPhoto(ctx context.Context, chat, name string, photo []byte) error
	FetchFile(ctx context.Context, fileID string) ([]byte, error)
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Searcher finds web results for a query. Empty results are not an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// BarcodeDecoder extracts barcode payloads out of an image.
type BarcodeDecoder interface {
	Decode(image []byte) ([]string, error)
}

// Renderer turns text into an image.
type Renderer interface {
	Render(text string) ([]byte, error)
}

// Deps bundles everything a Router needs at construction. No process-wide
// singletons; both the router and the scheduler receive their handles
// explicitly.
type Deps struct {
	Gateway Gateway
	Repo    store.Repo
	Log     *zap.Logger
	Search  Searcher
	Barcode BarcodeDecoder
	Render  Renderer
	// Channel is the default destination for scheduled messages. When
	// empty, /schedule targets the chat it was issued from.
	Channel string
}

// Router dispatches one inbound update to exactly one handler.
type Router struct {
	gw      Gateway
	repo    store.Repo
	log     *zap.Logger
	search  Searcher
	barcode BarcodeDecoder
	render  Renderer
	channel string
}

// NewRouter creates a Router.
func NewRouter(d Deps) *Router {
	return &Router{
		gw:      d.Gateway,
		repo:    d.Repo,
		log:     d.Log,
		search:  d.Search,
		barcode: d.Barcode,
		render:  d.Render,
		channel: d.Channel,
	}
}

// HandleUpdate routes a single update. All errors end as user-facing chat
// replies; nothing propagates to the webhook response.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	log := r.log.With(zap.String("corr", uuid.NewString()))

	switch {
	case upd.Message != nil && upd.Message.IsCommand():
		updatesTotal.WithLabelValues("command").Inc()
		r.handleCommand(ctx, log, upd.Message)
	case upd.Message != nil && len(upd.Message.Photo) > 0:
		updatesTotal.WithLabelValues("photo").Inc()
		r.handlePhoto(ctx, log, upd.Message)
	case upd.Message != nil:
		updatesTotal.WithLabelValues("text").Inc()
		r.handleText(ctx, log, upd.Message)
	case upd.CallbackQuery != nil:
		updatesTotal.WithLabelValues("callback").Inc()
		r.handleCallback(ctx, log, upd.CallbackQuery)
	}
}

// handleCommand dispatches /commands by name.
func (r *Router) handleCommand(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	switch m.Command() {
	case "start", "menu":
		r.sendMenu(ctx, log, m.Chat.ID, menuText)
	case "schedule":
		r.handleSchedule(ctx, log, m)
	case "unschedule":
		r.handleUnschedule(ctx, log, m)
	case "scheduled":
		r.handleScheduled(ctx, log, m)
	case "addnote":
		r.handleAddNote(ctx, log, m)
	case "mynotes":
		r.handleMyNotes(ctx, log, m)
	case "img":
		r.handleImg(ctx, log, m)
	case "search":
		r.runSearch(ctx, log, m.Chat.ID, m.CommandArguments())
	default:
		r.sendMenu(ctx, log, m.Chat.ID, menuText)
	}
}

// handleText classifies free-form text into a tagged intent and routes on
// the tag.
func (r *Router) handleText(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	intent, payload := domain.ClassifyText(m.Text)
	switch intent {
	case domain.IntentExternalLink:
		// Echo the link; the platform renders the preview.
		r.reply(ctx, log, m.Chat.ID, payload)
	case domain.IntentSearchDirective:
		r.runSearch(ctx, log, m.Chat.ID, payload)
	default:
		r.sendMenu(ctx, log, m.Chat.ID, plainTextReply)
	}
}

// handleCallback answers inline-button presses. Known keys reply with their
// prompt; anything else gets the not-installed notice.
func (r *Router) handleCallback(ctx context.Context, log *zap.Logger, cb *tgbotapi.CallbackQuery) {
	if err := r.gw.AnswerCallback(ctx, cb.ID); err != nil {
		log.Warn("answer callback failed", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	if prompt, ok := callbackPrompts[cb.Data]; ok {
		r.reply(ctx, log, chatID, prompt)
		return
	}
	r.reply(ctx, log, chatID, featureNotInstalled(cb.Data))
}
