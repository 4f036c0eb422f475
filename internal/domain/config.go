package domain

import "errors"

// Config validation errors.
var (
	ErrNonPositiveCapital = errors.New("initial capital must be positive")
	ErrNoLevels           = errors.New("ladder level count must be positive")
	ErrBadPositionRatio   = errors.New("max position ratio must be in (0, 1]")
	ErrBadOffset          = errors.New("ladder offsets must be in [0, 1)")
)

// StrategyConfig is the immutable parameter set for one strategy run.
type StrategyConfig struct {
	InitialCapital   float64 // starting account capital (currency units)
	BuildLevels      int     // count of descending entry price levels
	ProfitLevels     int     // count of ascending exit price levels
	MaxPositionRatio float64 // fraction of usable capital committed per entry
	BuyDrop          float64 // offset of the nearest entry level below the average
	SellRise         float64 // offset of the nearest exit level above the average
	LevelSpread      float64 // spacing between adjacent ladder levels
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() StrategyConfig {
	return StrategyConfig{
		InitialCapital:   20000.0,
		BuildLevels:      5,
		ProfitLevels:     5,
		MaxPositionRatio: 0.20,
		BuyDrop:          0.01,
		SellRise:         0.001,
		LevelSpread:      0.001,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c StrategyConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return ErrNonPositiveCapital
	}
	if c.BuildLevels <= 0 || c.ProfitLevels <= 0 {
		return ErrNoLevels
	}
	if c.MaxPositionRatio <= 0 || c.MaxPositionRatio > 1 {
		return ErrBadPositionRatio
	}
	if c.BuyDrop < 0 || c.BuyDrop >= 1 || c.SellRise < 0 || c.SellRise >= 1 ||
		c.LevelSpread < 0 || c.LevelSpread >= 1 {
		return ErrBadOffset
	}
	return nil
}
