package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// Directional bias labels for an instrument.
const (
	BiasBuy  = "BUY"
	BiasSell = "SELL"
	BiasBoth = "BOTH"
	BiasNone = "NONE"
)

// symbolRow maps one line of the symbol configuration CSV.
type symbolRow struct {
	Instrument string  `csv:"instrument"`
	BaseVolume float64 `csv:"base_volume"`
	DailyBias  string  `csv:"DAILY_BIAS"`
}

// SymbolConfig is the immutable per-instrument configuration. BaseVolume is
// already scaled by the account lot multiplier.
type SymbolConfig struct {
	Symbol     string
	BaseVolume float64
	DailyBias  string
}

// LoadSymbols reads the symbol universe from a CSV file and applies the
// account lot multiplier to every base volume. Malformed rows are skipped with
// a warning; an empty result is an error because the bot would have nothing to
// trade.
func LoadSymbols(path string, lotMultiplier float64, logger *zap.Logger) ([]SymbolConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open symbol config %s: %w", path, err)
	}
	defer f.Close()

	var rows []*symbolRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("could not parse symbol config %s: %w", path, err)
	}

	if lotMultiplier <= 0 {
		lotMultiplier = 1.0
	}

	symbols := make([]SymbolConfig, 0, len(rows))
	for i, row := range rows {
		if row.Instrument == "" {
			logger.Warn("Skipping symbol config row with empty instrument", zap.Int("row", i+1))
			continue
		}
		if row.BaseVolume <= 0 {
			logger.Warn("Skipping symbol config row with non-positive base volume",
				zap.Int("row", i+1), zap.String("instrument", row.Instrument))
			continue
		}

		bias := strings.ToUpper(strings.TrimSpace(row.DailyBias))
		switch bias {
		case BiasBuy, BiasSell, BiasBoth, BiasNone:
		default:
			logger.Warn("Skipping symbol config row with unknown daily bias",
				zap.Int("row", i+1), zap.String("instrument", row.Instrument), zap.String("bias", row.DailyBias))
			continue
		}

		sc := SymbolConfig{
			Symbol:     row.Instrument,
			BaseVolume: row.BaseVolume * lotMultiplier,
			DailyBias:  bias,
		}
		symbols = append(symbols, sc)
		logger.Info("Loaded symbol",
			zap.String("symbol", sc.Symbol),
			zap.String("bias", sc.DailyBias),
			zap.Float64("base_volume", sc.BaseVolume))
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("symbol config %s contains no usable rows", path)
	}
	return symbols, nil
}

// AllowsDirection reports whether the configured daily bias permits entering a
// trade in the given direction ("BUY" or "SELL").
func (s SymbolConfig) AllowsDirection(direction string) bool {
	switch s.DailyBias {
	case BiasBoth:
		return true
	case BiasBuy:
		return direction == BiasBuy
	case BiasSell:
		return direction == BiasSell
	default:
		return false
	}
}
