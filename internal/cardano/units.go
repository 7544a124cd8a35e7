package cardano

import "github.com/shopspring/decimal"

// LovelacePerAda converts between the display unit (ADA) and the base unit.
const LovelacePerAda = 1_000_000

var lovelaceFactor = decimal.NewFromInt(LovelacePerAda)

// ToLovelace converts a display-unit amount to lovelace. Amounts are
// truncated, not rounded, at 6 decimal places; sub-lovelace fractions are
// never owed to anyone.
func ToLovelace(ada decimal.Decimal) uint64 {
	return uint64(ada.Truncate(6).Mul(lovelaceFactor).IntPart())
}

// ToAda converts lovelace back to the display unit.
func ToAda(lovelace uint64) decimal.Decimal {
	return decimal.NewFromUint64(lovelace).Div(lovelaceFactor)
}
