package market

import (
	"math/big"
	"testing"
)

func TestParseAmountExact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{".5", "500000000000000000"},
		{"5.", "5000000000000000000"},
		{"0", "0"},
		{"+2", "2000000000000000000"},
		{" 1.25 ", "1250000000000000000"},
		{"0.000000000000001000", "1000"},
		{"0.000000000000000001", "1"},
		{"1000000", "1000000000000000000000000"},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseAmountRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"-1",
		"-0.5",
		"abc",
		"1.2.3",
		"1,5",
		".",
		"0x10",
		"0.0000000000000000001",
	}
	for _, in := range cases {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) succeeded, want error", in)
		}
	}
}

func TestFormatAmountMinimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"1000", "0.000000000000001"},
		{"1", "0.000000000000000001"},
		{"2000000000000000000000000", "2000000"},
	}
	for _, tc := range cases {
		wei, ok := new(big.Int).SetString(tc.in, 10)
		if !ok {
			t.Fatalf("bad test input %q", tc.in)
		}
		if got := FormatAmount(wei); got != tc.want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmountNil(t *testing.T) {
	if got := FormatAmount(nil); got != "0" {
		t.Fatalf("FormatAmount(nil) = %q, want %q", got, "0")
	}
}

func TestAmountRoundTrip(t *testing.T) {
	for _, in := range []string{"1", "0.5", "123.456", "0.000000000000000001"} {
		wei, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", in, err)
		}
		back, err := ParseAmount(FormatAmount(wei))
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", FormatAmount(wei), err)
		}
		if back.Cmp(wei) != 0 {
			t.Fatalf("round trip of %q lost precision: %s != %s", in, back, wei)
		}
	}
}
