package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func writeSymbolsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "symbols.csv")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSymbols(t *testing.T) {
	path := writeSymbolsFile(t, `instrument,base_volume,DAILY_BIAS
UK100,0.5,BOTH
US500,0.3,buy
GER40,0.4,SELL
VOD.L,2.0,none
`)

	symbols, err := LoadSymbols(path, 1.0, zap.NewNop())
	assert.NoError(t, err)
	assert.Len(t, symbols, 4)

	assert.Equal(t, "UK100", symbols[0].Symbol)
	assert.Equal(t, BiasBoth, symbols[0].DailyBias)
	assert.Equal(t, 0.5, symbols[0].BaseVolume)

	// Bias labels are case-insensitive.
	assert.Equal(t, BiasBuy, symbols[1].DailyBias)
	assert.Equal(t, BiasNone, symbols[3].DailyBias)
}

func TestLoadSymbols_AppliesLotMultiplier(t *testing.T) {
	path := writeSymbolsFile(t, `instrument,base_volume,DAILY_BIAS
UK100,0.5,BOTH
`)

	symbols, err := LoadSymbols(path, 2.0, zap.NewNop())
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, symbols[0].BaseVolume, 1e-9)
}

func TestLoadSymbols_SkipsBadRows(t *testing.T) {
	path := writeSymbolsFile(t, `instrument,base_volume,DAILY_BIAS
UK100,0.5,BOTH
,0.5,BOTH
US500,-1,BUY
GER40,0.4,SIDEWAYS
AAPL,1.0,SELL
`)

	symbols, err := LoadSymbols(path, 1.0, zap.NewNop())
	assert.NoError(t, err)
	assert.Len(t, symbols, 2)
	assert.Equal(t, "UK100", symbols[0].Symbol)
	assert.Equal(t, "AAPL", symbols[1].Symbol)
}

func TestLoadSymbols_AllRowsBadIsError(t *testing.T) {
	path := writeSymbolsFile(t, `instrument,base_volume,DAILY_BIAS
,0.5,BOTH
`)

	_, err := LoadSymbols(path, 1.0, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadSymbols_MissingFileIsError(t *testing.T) {
	_, err := LoadSymbols(filepath.Join(t.TempDir(), "nope.csv"), 1.0, zap.NewNop())
	assert.Error(t, err)
}

func TestSymbolConfig_AllowsDirection(t *testing.T) {
	both := SymbolConfig{DailyBias: BiasBoth}
	assert.True(t, both.AllowsDirection("BUY"))
	assert.True(t, both.AllowsDirection("SELL"))

	buyOnly := SymbolConfig{DailyBias: BiasBuy}
	assert.True(t, buyOnly.AllowsDirection("BUY"))
	assert.False(t, buyOnly.AllowsDirection("SELL"))

	sellOnly := SymbolConfig{DailyBias: BiasSell}
	assert.False(t, sellOnly.AllowsDirection("BUY"))
	assert.True(t, sellOnly.AllowsDirection("SELL"))

	none := SymbolConfig{DailyBias: BiasNone}
	assert.False(t, none.AllowsDirection("BUY"))
	assert.False(t, none.AllowsDirection("SELL"))
}
