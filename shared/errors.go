package shared

import "errors"

var (
	// ErrInsufficientCash is returned when an operation requires more cash
	// than the account holds.
	ErrInsufficientCash = errors.New("insufficient cash")
	// ErrInsufficientShares is returned when a sell exceeds the held shares
	// of a position.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrDataUnavailable is returned when a market data provider has no data
	// for a symbol.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrMalformedSeries is returned when a candle series fails validation.
	ErrMalformedSeries = errors.New("malformed series")
)
