// Package gateway is the single funnel for outbound sends. Both the command
// router and the scheduler loop go through it; nothing else talks to the
// messaging API directly.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// Client is the narrow surface of the Telegram bot API the gateway needs.
// *tgbotapi.BotAPI satisfies it.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Gateway wraps the messaging client with rate limiting, per-send logging
// and metrics. It performs no retries; callers decide what a failed send
// means at their call site.
type Gateway struct {
	client  Client
	log     *zap.Logger
	limiter *rate.Limiter
	http    *http.Client
}

// Telegram allows ~30 messages per second bot-wide.
const sendsPerSecond = 25

// New creates a Gateway around the given client.
func New(client Client, log *zap.Logger) *Gateway {
	return &Gateway{
		client:  client,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), sendsPerSecond),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText delivers a plain text message to the given chat. The chat is
// opaque: a numeric id or an "@channel" username. Errors wrap ErrDelivery.
func (g *Gateway) SendText(ctx context.Context, chat, text string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate wait: %v", domain.ErrDelivery, err)
	}
	_, err := g.client.Send(textMessage(chat, text))
	g.observe("text", chat, err)
	if err != nil {
		return fmt.Errorf("%w: send text to %s: %v", domain.ErrDelivery, chat, err)
	}
	return nil
}

// SendPhoto delivers an in-memory image to the given chat.
func (g *Gateway) SendPhoto(ctx context.Context, chat, name string, photo []byte) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate wait: %v", domain.ErrDelivery, err)
	}
	file := tgbotapi.FileBytes{Name: name, Bytes: photo}
	_, err := g.client.Send(photoMessage(chat, file))
	g.observe("photo", chat, err)
	if err != nil {
		return fmt.Errorf("%w: send photo to %s: %v", domain.ErrDelivery, chat, err)
	}
	return nil
}

// Send delivers a prebuilt API message through the gateway's rate limit.
// The router uses it for replies that carry keyboards; everything else
// should prefer SendText or SendPhoto.
func (g *Gateway) Send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate wait: %v", domain.ErrDelivery, err)
	}
	_, err := g.client.Send(c)
	g.observe("message", chatOf(c), err)
	if err != nil {
		return fmt.Errorf("%w: send: %v", domain.ErrDelivery, err)
	}
	return nil
}

// FetchFile downloads a file previously uploaded to the messaging platform,
// e.g. an inbound photo, by its file id.
func (g *Gateway) FetchFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := g.client.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve file %s: %v", domain.ErrDelivery, fileID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch file %s: %v", domain.ErrDelivery, fileID, err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch file %s: %v", domain.ErrDelivery, fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch file %s: status %d", domain.ErrDelivery, fileID, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch file %s: %v", domain.ErrDelivery, fileID, err)
	}
	return data, nil
}

// AnswerCallback acknowledges an inline-button press so the client stops
// showing its progress spinner.
func (g *Gateway) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate wait: %v", domain.ErrDelivery, err)
	}
	if _, err := g.client.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("%w: answer callback: %v", domain.ErrDelivery, err)
	}
	return nil
}

// observe logs the send and bumps the outcome counter.
func (g *Gateway) observe(kind, chat string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	sendsTotal.WithLabelValues(kind, outcome).Inc()
	if err != nil {
		g.log.Warn("send failed",
			zap.String("kind", kind),
			zap.String("chat", chat),
			zap.Error(err),
		)
		return
	}
	g.log.Info("sent",
		zap.String("kind", kind),
		zap.String("chat", chat),
	)
}

func chatOf(c tgbotapi.Chattable) string {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		if m.ChannelUsername != "" {
			return m.ChannelUsername
		}
		return strconv.FormatInt(m.ChatID, 10)
	}
	return "?"
}

func textMessage(chat, text string) tgbotapi.Chattable {
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(chat, text)
}

func photoMessage(chat string, file tgbotapi.FileBytes) tgbotapi.Chattable {
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		return tgbotapi.NewPhoto(id, file)
	}
	return tgbotapi.NewPhotoToChannel(chat, file)
}
