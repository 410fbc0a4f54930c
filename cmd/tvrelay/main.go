package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/igolaizola/tvrelay"
	"github.com/igolaizola/tvrelay/pkg/cornix"
	"github.com/igolaizola/tvrelay/pkg/logger"
	"github.com/igolaizola/tvrelay/pkg/trailing"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/shopspring/decimal"
)

func main() {
	// Create signal based context
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
			cancel()
		}
		signal.Stop(c)
	}()

	// Environment variables may be provided through a .env file
	_ = godotenv.Load()

	// Launch command
	cmd := newCommand()
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *ffcli.Command {
	fs := flag.NewFlagSet("tvrelay", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "tvrelay [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newRunCommand(),
		},
	}
}

func newRunCommand() *ffcli.Command {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	addr := fs.String("addr", ":5000", "webhook listen address")
	parser := fs.String("parser", "json", "alert format (json, text)")
	timeframe := fs.String("timeframe", "15m", "timeframe used when alerts don't include one")
	notifier := fs.String("notifier", "telegram", "message delivery (telegram, botapi, dry)")
	token := fs.String("telegram-token", "", "telegram bot token")
	chat := fs.Int64("telegram-chat", 0, "telegram chat id where signals are sent")

	defaults := trailing.DefaultConfig()
	tsi := fs.Float64("tsi", defaults.TSI, "trailing stop activation percentage")
	lowProfit := fs.Float64("ts-low-profit", defaults.LowOffset, "trailing stop offset percentage at 0.5% profit")
	highProfit := fs.Float64("ts-high-profit", defaults.HighOffset, "trailing stop offset percentage at 10% profit")
	actPump := fs.Float64("act-ts-pump", defaults.ActTsPump, "pump/dump trailing stop activation percentage")

	format := cornix.DefaultFormatter()
	takeProfit := fs.Float64("take-profit", format.TakeProfitPercent.InexactFloat64(), "take profit percentage")
	stopLoss := fs.Float64("stop-loss", format.StopLossPercent.InexactFloat64(), "stop loss percentage")
	exchange := fs.String("exchange", format.Exchange, "exchange shown in entry messages")
	leverage := fs.String("leverage", format.Leverage, "leverage shown in entry messages")

	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "console", "log format (console, json)")

	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "tvrelay run [flags]",
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithEnvVarPrefix("TVRELAY"),
		},
		ShortHelp: "run tvrelay webhook server",
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			if *addr == "" {
				return errors.New("missing listen address")
			}
			if *notifier != "dry" {
				if *token == "" {
					return errors.New("missing telegram token")
				}
				if *chat == 0 {
					return errors.New("missing telegram chat")
				}
			}
			if *takeProfit <= 0 || *stopLoss <= 0 {
				return fmt.Errorf("take profit and stop loss must be positive: %v %v", *takeProfit, *stopLoss)
			}
			l, err := logger.New(*logLevel, *logFormat)
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			cfg := tvrelay.ServeConfig{
				Config: tvrelay.Config{
					Trailing: trailing.Config{
						TSI:        *tsi,
						LowOffset:  *lowProfit,
						HighOffset: *highProfit,
						ActTsPump:  *actPump,
					},
					Formatter: cornix.Formatter{
						Exchange:          *exchange,
						Leverage:          *leverage,
						TakeProfitPercent: decimal.NewFromFloat(*takeProfit),
						StopLossPercent:   decimal.NewFromFloat(*stopLoss),
					},
				},
				Addr:          *addr,
				Parser:        *parser,
				Timeframe:     *timeframe,
				Notifier:      *notifier,
				TelegramToken: *token,
				TelegramChat:  *chat,
			}
			return tvrelay.Serve(ctx, l, cfg)
		},
	}
}
