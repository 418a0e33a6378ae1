package converter

import "strconv"

const zatoshisPerZEC = 100_000_000

// ConvertAmountZECToZatoshi converts a ZEC amount from the HTTP surface into
// the int64 zatoshis the ledger stores. Rounds to the nearest zatoshi so
// 0.1 does not lose a unit to float representation.
func ConvertAmountZECToZatoshi(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*zatoshisPerZEC + 0.5)
	}

	return int64(amount*zatoshisPerZEC - 0.5)
}

func ConvertAmountZatoshiToZEC(amount int64) float64 {
	return float64(amount) / zatoshisPerZEC
}

func ConvertAmountZatoshiToString(amount int64) string {
	return strconv.FormatFloat(ConvertAmountZatoshiToZEC(amount), 'f', -1, 64)
}
