package market

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Amounts cross the display/ledger unit boundary at exactly two points:
// parsing user input before submission and formatting stored prices.
// Both directions stay on big.Int; nothing here touches floating point.

const amountDecimals = 18

var weiPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(amountDecimals), nil)

var (
	errAmountRequired  = errors.New("amount is required")
	errAmountNegative  = errors.New("amount must not be negative")
	errAmountMalformed = errors.New("malformed amount")
)

// ParseAmount converts a decimal display amount to wei, exactly.
func ParseAmount(text string) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errAmountRequired
	}
	if strings.HasPrefix(text, "-") {
		return nil, errAmountNegative
	}
	text = strings.TrimPrefix(text, "+")
	whole, frac, _ := strings.Cut(text, ".")
	if whole == "" && frac == "" {
		return nil, errAmountMalformed
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, errAmountMalformed
	}
	if len(frac) > amountDecimals {
		return nil, fmt.Errorf("amount supports at most %d decimal places", amountDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", amountDecimals-len(frac))
	wei, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, errAmountMalformed
	}
	return wei, nil
}

// FormatAmount renders wei as a minimal decimal display string.
func FormatAmount(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	quo, rem := new(big.Int).QuoRem(wei, weiPerUnit, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%018s", rem.String()), "0")
	return quo.String() + "." + frac
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
