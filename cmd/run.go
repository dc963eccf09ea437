package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/vacancy-bot/internal/bot"
	"github.com/spigell/vacancy-bot/internal/dialog"
	"github.com/spigell/vacancy-bot/internal/health"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/notify"
	"github.com/spigell/vacancy-bot/internal/secrets"
	"github.com/spigell/vacancy-bot/internal/server"
	"github.com/spigell/vacancy-bot/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the telegram bot",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("http-addr", "", "address of the health server, e.g. :8080. Default is unset.")
	runCmd.Flags().String("notify-schedule", "", "cron schedule of new vacancy digests, e.g. '@every 6h'. Default is unset.")

	viper.BindPFlag("http.addr", runCmd.Flags().Lookup("http-addr"))
	viper.BindPFlag("notify.schedule", runCmd.Flags().Lookup("notify-schedule"))
}

// run is the main command for the bot.
func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vacancy-bot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := resolveTelegramToken(config)
	if err != nil {
		logger.Fatal(
			"loading telegram token",
			zap.Error(err),
			zap.String("hint", "set VACANCY_BOT_TELEGRAM_TOKEN or the 'telegram.token-file' key in the configuration file"),
		)
	}

	c, err := buildComponents(ctx, logger, config)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}
	defer c.Close()

	tg, err := telegram.New(logger, token, dialog.Keyboard)
	if err != nil {
		logger.Fatal("connecting to telegram", zap.Error(err))
	}

	machine := dialog.New(logger, c.store, dialog.NewSessions(), c.search, tg)
	dispatcher := bot.NewDispatcher(logger, machine)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tg.Run(gctx, dispatcher)
	})

	if schedule := viper.GetString("notify.schedule"); schedule != "" {
		notifier := notify.New(logger, schedule, c.store, c.search, tg)
		if err := notifier.Start(gctx); err != nil {
			logger.Fatal("starting digests", zap.Error(err))
		}
		defer notifier.Stop()
	}

	if addr := viper.GetString("http.addr"); addr != "" {
		srv := server.New(logger, health.NewService(health.PingChecker("store:"+c.store.Name(), c.store)))
		g.Go(func() error {
			return srv.Run(gctx, addr)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("stopped with error", zap.Error(err))
	}

	dispatcher.Wait()
	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}

func resolveTelegramToken(config *Config) (string, error) {
	src := secrets.Source{Name: "telegram token"}
	if config.Telegram != nil {
		src.Value = config.Telegram.Token
		src.File = config.Telegram.TokenFile
	}
	return secrets.Load(src)
}

// redacted returns a copy of the config safe for logging.
func redacted(config *Config) Config {
	out := *config
	if out.Telegram != nil {
		tg := *out.Telegram
		if tg.Token != "" {
			tg.Token = "***"
		}
		out.Telegram = &tg
	}
	if out.Sources != nil && out.Sources.Habr != nil && out.Sources.Habr.Token != "" {
		sources := *out.Sources
		habr := *sources.Habr
		habr.Token = "***"
		sources.Habr = &habr
		out.Sources = &sources
	}
	if out.Store.RedisURL != "" || out.Store.PostgresURL != "" {
		out.Store.RedisURL = redactURL(out.Store.RedisURL)
		out.Store.PostgresURL = redactURL(out.Store.PostgresURL)
	}
	return out
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
