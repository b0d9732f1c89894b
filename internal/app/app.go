package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Alpharobocup/bot-all/internal/collab"
	"github.com/Alpharobocup/bot-all/internal/config"
	"github.com/Alpharobocup/bot-all/internal/gateway"
	"github.com/Alpharobocup/bot-all/internal/scheduler"
	"github.com/Alpharobocup/bot-all/internal/store"
	"github.com/Alpharobocup/bot-all/internal/telegram"
)

// App wires the store, gateway, router and scheduler together and owns the
// HTTP surface: the token-derived webhook path, the health body and metrics.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

// New creates the App and its HTTP server. The router and scheduler are
// built in Run, once the store is open.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	a := &App{cfg: cfg, log: log, bot: bot}

	mux := http.NewServeMux()
	// The webhook path is derived from the secret token, which is what makes
	// it unguessable.
	mux.HandleFunc("/"+cfg.BotToken, a.handleWebhook)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", a.handleHealth)

	a.httpSrv = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a, nil
}

// Run opens the store, wires the components, registers the webhook and
// blocks until a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting bot",
		zap.String("port", a.cfg.Port),
		zap.Duration("tick", a.cfg.TickInterval),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	gw := gateway.New(a.bot, a.log)
	a.router = telegram.NewRouter(telegram.Deps{
		Gateway: gw,
		Repo:    repo,
		Log:     a.log,
		Search:  collab.NewWebSearcher(),
		Barcode: collab.NewBarcodeDecoder(),
		Render:  collab.NewImageRenderer(),
		Channel: a.cfg.ChannelID,
	})
	a.sched = scheduler.New(repo, a.log, gw, a.cfg.TickInterval)

	if err := a.registerWebhook(); err != nil {
		a.log.Error("webhook registration failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.sched.Run(ctx)

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}

// registerWebhook points the messaging platform at this instance.
func (a *App) registerWebhook() error {
	if _, err := a.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		a.log.Warn("remove old webhook failed", zap.Error(err))
	}
	url := a.cfg.WebhookURL + "/" + a.cfg.BotToken
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	if _, err := a.bot.Request(wh); err != nil {
		return err
	}
	a.log.Info("webhook set", zap.String("url", a.cfg.WebhookURL+"/***"))
	return nil
}

// handleWebhook accepts one JSON-encoded update per POST. Routing errors are
// swallowed into chat replies; the platform always gets a 200.
func (a *App) handleWebhook(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var upd tgbotapi.Update
	if err := json.NewDecoder(req.Body).Decode(&upd); err != nil {
		a.log.Warn("bad update body", zap.Error(err))
	} else {
		a.router.HandleUpdate(req.Context(), upd)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (a *App) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Bot is running"))
}
