package models

// PriceQuote is one coin's spot price in the display currency, with its
// 24h change in percent. Change24h is 0 when the feed omits it.
type PriceQuote struct {
	Price     float64
	Change24h float64
}
