package tvrelay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/igolaizola/tvrelay/pkg/cornix"
	"github.com/igolaizola/tvrelay/pkg/exit"
	"github.com/igolaizola/tvrelay/pkg/signal"
	"github.com/igolaizola/tvrelay/pkg/trade"
	"github.com/igolaizola/tvrelay/pkg/trade/inmem"
	"github.com/igolaizola/tvrelay/pkg/trailing"
	"go.uber.org/zap"
)

var version = "v261018a"

var ErrDelivery = errors.New("tvrelay: couldn't deliver message")

// Notifier delivers formatted messages to the signal chat.
type Notifier interface {
	Send(ctx context.Context, msg string) error
}

type Config struct {
	Trailing  trailing.Config
	Formatter cornix.Formatter
}

// Relay turns alerts into Cornix messages. It owns the registry of open
// trades for the lifetime of the process.
type Relay struct {
	log       *zap.Logger
	trades    trade.Store
	resolver  *exit.Resolver
	formatter cornix.Formatter
	notifier  Notifier
	parser    signal.Parser
	started   time.Time
	// Serializes registry updates with exit resolutions
	lock sync.Mutex
}

func New(log *zap.Logger, notifier Notifier, parser signal.Parser, cfg Config) (*Relay, error) {
	calc, err := trailing.NewCalculator(cfg.Trailing)
	if err != nil {
		return nil, fmt.Errorf("tvrelay: couldn't create calculator: %w", err)
	}
	store := inmem.New()
	return &Relay{
		log:       log,
		trades:    store,
		resolver:  exit.NewResolver(store, calc),
		formatter: cfg.Formatter,
		notifier:  notifier,
		parser:    parser,
		started:   time.Now(),
	}, nil
}

// Handle parses an alert and relays it. On delivery failures the formatted
// message is returned along with the error.
func (r *Relay) Handle(ctx context.Context, text string) (string, error) {
	sig, err := r.parser.Parse(text)
	if err != nil {
		return "", err
	}
	switch sig.Kind {
	case signal.Entry:
		return r.Entry(ctx, sig)
	case signal.Exit:
		return r.Exit(ctx, sig)
	default:
		return "", fmt.Errorf("%w: unknown type %q", signal.ErrInvalid, sig.Kind)
	}
}

// Entry records the trade, replacing any trade open for the same symbol, and
// sends the entry message.
func (r *Relay) Entry(ctx context.Context, sig *signal.Signal) (string, error) {
	if sig.Symbol == "" {
		return "", fmt.Errorf("%w: missing symbol", signal.ErrInvalid)
	}
	if !sig.EntryPrice.IsPositive() {
		return "", fmt.Errorf("%w: entry price must be positive: %s", signal.ErrInvalid, sig.EntryPrice)
	}
	t := trade.New(sig.Symbol, sig.Direction, sig.EntryPrice, sig.Timeframe)

	r.lock.Lock()
	prev, replaced := r.trades.Get(t.Symbol)
	r.trades.Save(t)
	r.lock.Unlock()

	if replaced {
		r.log.Warn("replacing open trade",
			zap.String("symbol", t.Symbol),
			zap.String("previous_id", prev.ID),
			zap.Stringer("previous_entry", prev.EntryPrice),
		)
	}
	r.log.Info("trade opened",
		zap.String("id", t.ID),
		zap.String("symbol", t.Symbol),
		zap.Stringer("action", t.Direction),
		zap.Stringer("entry", t.EntryPrice),
		zap.String("timeframe", t.Timeframe),
	)
	return r.send(ctx, r.formatter.Entry(t))
}

// Exit resolves the exit price, forgets the trade and sends the exit
// message. The trade stays open if the exit price can't be computed.
func (r *Relay) Exit(ctx context.Context, sig *signal.Signal) (string, error) {
	r.lock.Lock()
	t, open := r.trades.Get(sig.Symbol)
	price, err := r.resolver.Resolve(sig.Symbol, sig.ExitType, sig.ExitPrice, sig.Bar)
	if err != nil {
		r.lock.Unlock()
		return "", fmt.Errorf("tvrelay: couldn't resolve exit for %s: %w", sig.Symbol, err)
	}
	if open {
		r.trades.Delete(sig.Symbol)
	}
	r.lock.Unlock()

	if open {
		r.log.Info("trade closed",
			zap.String("id", t.ID),
			zap.String("symbol", t.Symbol),
			zap.String("exit_type", string(sig.ExitType)),
			zap.Stringer("entry", t.EntryPrice),
			zap.Stringer("raw_exit", sig.ExitPrice),
			zap.Stringer("exit", price),
			zap.String("profit", cornix.Profit(t, price).StringFixed(2)+"%"),
		)
	} else {
		r.log.Warn("exit without open trade, using reported price",
			zap.String("symbol", sig.Symbol),
			zap.Stringer("exit", price),
		)
	}
	return r.send(ctx, r.formatter.Exit(sig.Symbol, price))
}

func (r *Relay) send(ctx context.Context, msg string) (string, error) {
	if err := r.notifier.Send(ctx, msg); err != nil {
		r.log.Error("couldn't deliver message", zap.Error(err))
		return msg, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return msg, nil
}

// Trades returns the open trades sorted by opening time.
func (r *Relay) Trades() []*trade.Trade {
	return r.trades.List()
}

func (r *Relay) Count() int {
	return r.trades.Count()
}

// Status reports the version, uptime and number of open trades.
func (r *Relay) Status(_ string) string {
	return fmt.Sprintf("🤖 tvrelay %s up %s\n%d open trades", version, time.Since(r.started).Round(time.Second), r.Count())
}

// Report lists the open trades, oldest first.
func (r *Relay) Report(_ string) string {
	trades := r.Trades()
	if len(trades) == 0 {
		return "no open trades"
	}
	sb := &strings.Builder{}
	for _, t := range trades {
		emoji := "📈"
		if t.Direction == trade.Short {
			emoji = "📉"
		}
		fmt.Fprintf(sb, "%s #%s %s %s %s %s\n", emoji, t.Symbol, t.Direction, t.EntryPrice, t.Timeframe, time.Since(t.OpenedAt).Round(time.Second))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
