package engine

import (
	"github.com/shopspring/decimal"

	"boundary-trader/internal/domain"
)

// BuildLadder returns the entry price ladder for the given trailing average.
// Level 0 sits BuyDrop below the average and is the highest price; each
// further level steps down by LevelSpread of the base. Prices are quantized
// to 2 decimals at generation and never re-rounded downstream.
func BuildLadder(ma float64, cfg domain.StrategyConfig) []float64 {
	base := ma * (1 - cfg.BuyDrop)
	prices := make([]float64, cfg.BuildLevels)
	for j := range prices {
		prices[j] = roundPrice(base * (1 - float64(j)*cfg.LevelSpread))
	}
	return prices
}

// ProfitLadder returns the exit price ladder for the given trailing average.
// Level 0 sits SellRise above the average and is the lowest price; each
// further level steps up by LevelSpread of the base.
func ProfitLadder(ma float64, cfg domain.StrategyConfig) []float64 {
	base := ma * (1 + cfg.SellRise)
	prices := make([]float64, cfg.ProfitLevels)
	for j := range prices {
		prices[j] = roundPrice(base * (1 + float64(j)*cfg.LevelSpread))
	}
	return prices
}

// roundPrice quantizes a raw ladder price to currency precision.
func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
