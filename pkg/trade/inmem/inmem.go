package inmem

import (
	"sort"
	"strings"
	"sync"

	"github.com/igolaizola/tvrelay/pkg/trade"
)

// Store is the process-wide trade registry. Callers only ever get copies of
// the stored trades.
type Store struct {
	lock   sync.RWMutex
	trades map[string]trade.Trade
}

var _ trade.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		trades: make(map[string]trade.Trade),
	}
}

func (s *Store) Save(t *trade.Trade) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.trades[key(t.Symbol)] = *t
}

func (s *Store) Get(symbol string) (*trade.Trade, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	t, ok := s.trades[key(symbol)]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (s *Store) Delete(symbol string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.trades, key(symbol))
}

// List returns the open trades sorted by opening time.
func (s *Store) List() []*trade.Trade {
	s.lock.RLock()
	trades := make([]*trade.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		t := t
		trades = append(trades, &t)
	}
	s.lock.RUnlock()

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].OpenedAt.Equal(trades[j].OpenedAt) {
			return trades[i].Symbol < trades[j].Symbol
		}
		return trades[i].OpenedAt.Before(trades[j].OpenedAt)
	})
	return trades
}

func (s *Store) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.trades)
}

func key(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
