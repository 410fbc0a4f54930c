package trade

// Store keeps at most one open trade per symbol.
type Store interface {
	// Save inserts the trade, replacing any trade open for the same symbol.
	Save(*Trade)
	// Get returns a copy of the trade open for symbol.
	Get(symbol string) (*Trade, bool)
	// Delete removes the trade open for symbol, if any.
	Delete(symbol string)
	List() []*Trade
	Count() int
}
