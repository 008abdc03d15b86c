package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v4"

	"github.com/Paveld-cloud/imgbb-bot/internal/config"
	"github.com/Paveld-cloud/imgbb-bot/internal/handler"
	"github.com/Paveld-cloud/imgbb-bot/internal/handler/telegram"
	hostmodel "github.com/Paveld-cloud/imgbb-bot/internal/model/imagehost"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/imagehost"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/session"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/upload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := session.NewStore()
	hostClient := imagehost.NewClient(&hostmodel.Config{
		APIKey:  cfg.ImgBB.APIKey,
		BaseURL: cfg.ImgBB.BaseURL,
		Timeout: cfg.ImgBB.Timeout,
	})
	uploadSvc := upload.NewService(store, hostClient)

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, _ tele.Context) {
			log.Printf("[bot] handler error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("failed to initialize bot: %v", err)
	}

	telegram.New(bot, uploadSvc).Register()

	if cfg.Bot.SessionTTL > 0 {
		ttl := time.Duration(cfg.Bot.SessionTTL) * time.Second
		go store.RunJanitor(ctx, ttl, ttl/2)
		log.Printf("session janitor enabled, ttl=%s", ttl)
	}

	if cfg.Bot.WebhookEnabled() {
		runWebhook(ctx, cfg, bot)
	} else {
		runPolling(ctx, bot)
	}
}

// runPolling serves updates over long polling. Any previously registered
// webhook is removed first, since Telegram refuses to poll while one is set.
func runPolling(ctx context.Context, bot *tele.Bot) {
	if _, err := bot.Raw("deleteWebhook", map[string]bool{"drop_pending_updates": false}); err != nil {
		log.Printf("warning: failed to delete webhook: %v", err)
	}

	go func() {
		<-ctx.Done()
		bot.Stop()
	}()

	log.Println("imgbb bot starting in polling mode")
	bot.Start()
}

// runWebhook registers the webhook with Telegram and serves updates over
// HTTP. The webhook path is the bot token, so only Telegram can hit it.
func runWebhook(ctx context.Context, cfg *config.Config, bot *tele.Bot) {
	webhookURL := cfg.Bot.WebhookURL + "/" + cfg.Bot.Token
	if _, err := bot.Raw("setWebhook", map[string]string{"url": webhookURL}); err != nil {
		log.Fatalf("failed to register webhook: %v", err)
	}

	router := handler.NewRouter(cfg.Bot.Token, bot)

	log.Println("imgbb bot starting in webhook mode")
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("imgbb bot listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
