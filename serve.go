package tvrelay

import (
	"context"
	"errors"
	"fmt"

	"github.com/igolaizola/tvrelay/pkg/logger"
	"github.com/igolaizola/tvrelay/pkg/signal"
	"github.com/igolaizola/tvrelay/pkg/signal/parser"
	"github.com/igolaizola/tvrelay/pkg/telegram"
	"github.com/igolaizola/tvrelay/pkg/telegram/botapi"
	"github.com/igolaizola/tvrelay/pkg/webhook"
	"go.uber.org/zap"
)

type ServeConfig struct {
	Config
	Addr          string
	Parser        string
	Timeframe     string
	Notifier      string
	TelegramToken string
	TelegramChat  int64
}

// Serve runs the webhook server, and the telegram command poller when the
// telebot notifier is used, until the context is canceled.
func Serve(ctx context.Context, log *zap.Logger, cfg ServeConfig) error {
	p, err := parser.NewParser(cfg.Parser, signal.Options{Timeframe: cfg.Timeframe})
	if err != nil {
		return fmt.Errorf("tvrelay: couldn't create parser %q: %w", cfg.Parser, err)
	}

	var notifier Notifier
	var bot *telegram.Bot
	switch cfg.Notifier {
	case "telegram":
		bot, err = telegram.New(cfg.TelegramToken, cfg.TelegramChat, logger.Print(log))
		if err != nil {
			return err
		}
		notifier = bot
	case "botapi":
		notifier = botapi.New(cfg.TelegramToken, cfg.TelegramChat)
	case "dry":
		notifier = telegram.NewDry(logger.Print(log))
	default:
		return fmt.Errorf("tvrelay: unknown notifier %q", cfg.Notifier)
	}

	relay, err := New(log, notifier, p, cfg.Config)
	if err != nil {
		return err
	}
	log.Info("tvrelay running",
		zap.String("version", version),
		zap.String("notifier", cfg.Notifier),
		zap.String("parser", cfg.Parser),
		zap.Float64("tsi", cfg.Trailing.TSI),
		zap.Float64("ts_low_profit", cfg.Trailing.LowOffset),
		zap.Float64("ts_high_profit", cfg.Trailing.HighOffset),
		zap.Float64("act_ts_pump", cfg.Trailing.ActTsPump),
	)
	defer log.Info("tvrelay stopped")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	botErr := make(chan error, 1)
	if bot != nil {
		bot.HandleCommand("status", relay.Status)
		bot.HandleCommand("trades", relay.Report)
		go func() {
			botErr <- bot.Run(ctx)
		}()
	} else {
		close(botErr)
	}

	srv := webhook.New(cfg.Addr, relay, log)
	err = srv.Run(ctx)
	cancel()
	if berr := <-botErr; berr != nil {
		err = errors.Join(err, berr)
	}
	return err
}
