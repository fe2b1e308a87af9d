package wei

import (
	"math/big"
	"testing"
)

func TestParse_Whole(t *testing.T) {
	v, err := Parse("2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := new(big.Int).SetString("2000000000000000000", 10)
	if v.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, v)
	}
}

func TestParse_Fraction(t *testing.T) {
	v, err := Parse("1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	if v.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, v)
	}
}

func TestParse_SmallestUnit(t *testing.T) {
	v, err := Parse("0.000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("expected 1 wei, got %s", v)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "-1", "abc", "1.2.3", "0.0000000000000000001", "1.-5", "1.+5", "+1.5", "1_0", "1.5e3"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParse_ZeroIsNotPositive(t *testing.T) {
	v, err := Parse("0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Sign() != 0 {
		t.Errorf("expected zero, got %s", v)
	}
}

func TestFormat(t *testing.T) {
	v, _ := Parse("1.5")
	if got := Format(v); got != "1.5" {
		t.Errorf("expected 1.5, got %s", got)
	}
	if got := Format(big.NewInt(0)); got != "0" {
		t.Errorf("expected 0, got %s", got)
	}
	if got := Format(big.NewInt(1)); got != "0.000000000000000001" {
		t.Errorf("expected 18-place fraction, got %s", got)
	}
}

func TestFormatFixed(t *testing.T) {
	v, _ := Parse("1.23456789")
	if got := FormatFixed(v, 4); got != "1.2345" {
		t.Errorf("expected truncation to 1.2345, got %s", got)
	}
	if got := FormatFixed(nil, 4); got != "0.0000" {
		t.Errorf("expected 0.0000 for nil, got %s", got)
	}
}
