// Package wei converts between decimal ETH strings and integer wei
// amounts. All conversions are exact big-integer arithmetic; floats
// would drift from the contract's own accounting.
package wei

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const decimals = 18

var scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)

// Parse converts a decimal ETH string ("1.5") into wei. At most 18
// fractional digits are accepted; negative amounts are rejected.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, errors.New("negative amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("more than %d decimal places", decimals)
	}
	// SetString tolerates signs and underscores; only bare digits are
	// valid in either part.
	if !digitsOnly(whole) || (frac != "" && !digitsOnly(frac)) {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	intPart, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	out := new(big.Int).Mul(intPart, scale)
	if frac != "" {
		fracPart, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
		// Pad the fraction to 18 digits: "5" -> 5 * 10^17.
		pad := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-len(frac))), nil)
		out.Add(out, fracPart.Mul(fracPart, pad))
	}
	return out, nil
}

func digitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Format renders wei as a decimal ETH string with trailing zeros trimmed.
func Format(v *big.Int) string {
	if v == nil {
		return "0"
	}
	q, r := new(big.Int).QuoRem(v, scale, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%018s", r.String()), "0")
	return q.String() + "." + frac
}

// FormatFixed renders wei with exactly n fractional digits, truncating,
// for display columns.
func FormatFixed(v *big.Int, n int) string {
	if n <= 0 {
		if v == nil {
			return "0"
		}
		return new(big.Int).Quo(v, scale).String()
	}
	if n > decimals {
		n = decimals
	}
	if v == nil {
		return "0." + strings.Repeat("0", n)
	}
	q, r := new(big.Int).QuoRem(v, scale, new(big.Int))
	frac := fmt.Sprintf("%018s", r.String())[:n]
	return q.String() + "." + frac
}
