package domain

// Market identifies the exchange a security trades on.
type Market string

// Market constants.
const (
	MarketTWSE Market = "TWSE" // Taiwan Stock Exchange listed
	MarketTPEX Market = "TPEX" // Taipei Exchange (over-the-counter)
)

// Valid reports whether the market is a known value.
func (m Market) Valid() bool {
	return m == MarketTWSE || m == MarketTPEX
}

// Security represents one listed security.
// Corresponds to securities table in PostgreSQL.
type Security struct {
	SecurityID string // PRIMARY KEY, exchange ticker, e.g. "2330"
	Name       string // display name
	Market     Market // TWSE | TPEX
	Segment    string // industry group used for parameter search
	CreatedAt  int64  // record creation timestamp (ms)
}
