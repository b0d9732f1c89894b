package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

const searchResultLimit = 5

// reply sends a plain text message to the chat, logging delivery failures.
func (r *Router) reply(ctx context.Context, log *zap.Logger, chatID int64, text string) {
	if err := r.gw.SendText(ctx, strconv.FormatInt(chatID, 10), text); err != nil {
		log.Warn("reply failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// sendMenu sends text with the inline menu keyboard attached.
func (r *Router) sendMenu(ctx context.Context, log *zap.Logger, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = menuKeyboard()
	if err := r.gw.Send(ctx, msg); err != nil {
		log.Warn("menu send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// scheduleChat picks the destination for a scheduled message: the configured
// channel when set, otherwise the chat the command came from.
func (r *Router) scheduleChat(m *tgbotapi.Message) string {
	if r.channel != "" {
		return r.channel
	}
	return strconv.FormatInt(m.Chat.ID, 10)
}

// handleSchedule implements "/schedule HH:MM | text".
func (r *Router) handleSchedule(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	ft, text, err := domain.ParseScheduleCommand(m.CommandArguments())
	if err != nil {
		r.reply(ctx, log, m.Chat.ID, scheduleUsage)
		return
	}

	id, err := r.repo.CreateScheduled(ctx, r.scheduleChat(m), ft, text)
	if err != nil {
		log.Error("create scheduled failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, storageFailure)
		return
	}
	log.Info("scheduled created", zap.Int64("id", id), zap.String("at", ft.String()))
	r.reply(ctx, log, m.Chat.ID, fmt.Sprintf("Message scheduled for %s (id %d).", ft, id))
}

// handleUnschedule soft-deletes an entry by id.
func (r *Router) handleUnschedule(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	id, err := strconv.ParseInt(strings.TrimSpace(m.CommandArguments()), 10, 64)
	if err != nil || id <= 0 {
		r.reply(ctx, log, m.Chat.ID, unscheduleUsage)
		return
	}
	if err := r.repo.SetScheduledActive(ctx, id, false); err != nil {
		log.Error("deactivate scheduled failed", zap.Int64("id", id), zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, storageFailure)
		return
	}
	r.reply(ctx, log, m.Chat.ID, fmt.Sprintf("Scheduled message %d removed.", id))
}

// handleScheduled lists the active entries.
func (r *Router) handleScheduled(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	entries, err := r.repo.ListScheduled(ctx)
	if err != nil {
		log.Error("list scheduled failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, storageFailure)
		return
	}

	var lines []string
	for _, e := range entries {
		if !e.Active {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d — %s — %s", e.ID, e.FireTime, e.Text))
	}
	if len(lines) == 0 {
		r.reply(ctx, log, m.Chat.ID, "Nothing scheduled.")
		return
	}
	r.reply(ctx, log, m.Chat.ID, "Scheduled messages:\n"+strings.Join(lines, "\n"))
}

// handleAddNote implements "/addnote text".
func (r *Router) handleAddNote(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	content := strings.TrimSpace(m.CommandArguments())
	if content == "" {
		r.reply(ctx, log, m.Chat.ID, addnoteUsage)
		return
	}
	if _, err := r.repo.CreateNote(ctx, m.From.ID, content); err != nil {
		log.Error("create note failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, storageFailure)
		return
	}
	r.reply(ctx, log, m.Chat.ID, "Saved.")
}

// handleMyNotes lists the sender's notes, newest first.
func (r *Router) handleMyNotes(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	notes, err := r.repo.ListNotes(ctx, m.From.ID)
	if err != nil {
		log.Error("list notes failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, storageFailure)
		return
	}
	if len(notes) == 0 {
		r.reply(ctx, log, m.Chat.ID, "You have no notes.")
		return
	}
	var lines []string
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%d: %s", n.ID, n.Content))
	}
	r.reply(ctx, log, m.Chat.ID, strings.Join(lines, "\n\n"))
}

// handleImg implements "/img text": render the text and send it as a photo.
func (r *Router) handleImg(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	text := strings.TrimSpace(m.CommandArguments())
	if text == "" {
		r.reply(ctx, log, m.Chat.ID, imgUsage)
		return
	}
	png, err := r.render.Render(text)
	if err != nil {
		log.Warn("render failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, renderUnavailable)
		return
	}
	if err := r.gw.SendPhoto(ctx, strconv.FormatInt(m.Chat.ID, 10), "text.png", png); err != nil {
		log.Warn("photo send failed", zap.Error(err))
	}
}

// runSearch performs a web search and replies with the top links.
func (r *Router) runSearch(ctx context.Context, log *zap.Logger, chatID int64, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		r.reply(ctx, log, chatID, searchUsage)
		return
	}
	links, err := r.search.Search(ctx, query, searchResultLimit)
	if err != nil {
		log.Warn("search failed", zap.String("query", query), zap.Error(err))
		r.reply(ctx, log, chatID, searchUnavailable)
		return
	}
	if len(links) == 0 {
		r.reply(ctx, log, chatID, "No results found.")
		return
	}
	r.reply(ctx, log, chatID, "Top results:\n"+strings.Join(links, "\n"))
}

// handlePhoto fetches the largest size of an inbound photo and tries to read
// barcodes out of it. Each payload is echoed along with search results for it.
func (r *Router) handlePhoto(ctx context.Context, log *zap.Logger, m *tgbotapi.Message) {
	largest := m.Photo[len(m.Photo)-1]
	data, err := r.gw.FetchFile(ctx, largest.FileID)
	if err != nil {
		log.Warn("photo fetch failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, "Could not fetch the photo. Please try again.")
		return
	}

	payloads, err := r.barcode.Decode(data)
	if err != nil {
		log.Warn("barcode decode failed", zap.Error(err))
		r.reply(ctx, log, m.Chat.ID, barcodeUnavailable)
		return
	}
	if len(payloads) == 0 {
		r.reply(ctx, log, m.Chat.ID, photoAck)
		return
	}

	for _, p := range payloads {
		r.reply(ctx, log, m.Chat.ID, "Barcode read: "+p)
		links, err := r.search.Search(ctx, p, searchResultLimit)
		if err != nil {
			log.Warn("barcode search failed", zap.Error(err))
			continue
		}
		if len(links) > 0 {
			r.reply(ctx, log, m.Chat.ID, strings.Join(links, "\n"))
		}
	}
}
