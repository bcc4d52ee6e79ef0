package domain

import "time"

// PriceBar represents one daily OHLC bar for a security.
// Corresponds to price_bars table in PostgreSQL.
// Bars are immutable once persisted and ordered ascending by date per security.
type PriceBar struct {
	SecurityID string    // FK to securities
	Date       time.Time // trading day, truncated to UTC midnight
	Open       float64   // opening price, <= 0 means missing
	High       float64   // intraday high
	Low        float64   // intraday low
	Close      float64   // closing price
	Volume     int64     // traded shares
}

// Day truncates a timestamp to its UTC trading day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
