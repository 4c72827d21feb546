package ledger

// ZeroCost represents a sub-position of shares acquired without a cash cost,
// such as gifted shares or shares funded by realized gains. Zero cost shares
// never contribute to the position's cost basis.
type ZeroCost struct {
	Shares    float64 `json:"shares"`
	FaceValue float64 `json:"faceValue"`
}

// Position represents the held shares of a single symbol. CostBasis is the
// volume weighted average purchase price of the regular shares only.
type Position struct {
	Symbol    string   `json:"symbol"`
	Shares    float64  `json:"shares"`
	CostBasis float64  `json:"costBasis"`
	ZeroCost  ZeroCost `json:"zeroCost"`
}

// Valuation represents the derived market metrics of a position at a price.
type Valuation struct {
	MarketValue   float64
	CostValue     float64
	UnrealizedPL  float64
	ReturnPercent float64
}

// Valuate derives the position's valuation at the provided price. Zero cost
// shares count toward market value but are excluded from cost and return
// figures, since they represent pure gain.
func (p *Position) Valuate(currentPrice float64) Valuation {
	valuation := Valuation{
		MarketValue:  (p.Shares + p.ZeroCost.Shares) * currentPrice,
		CostValue:    p.Shares * p.CostBasis,
		UnrealizedPL: p.Shares*currentPrice - p.Shares*p.CostBasis,
	}

	if valuation.CostValue > 0 {
		valuation.ReturnPercent = valuation.UnrealizedPL / valuation.CostValue * 100
	}

	return valuation
}

// empty reports whether the position holds no shares of any kind.
func (p *Position) empty() bool {
	return p.Shares == 0 && p.ZeroCost.Shares == 0
}
