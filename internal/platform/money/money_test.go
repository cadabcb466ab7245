package money

import "testing"

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		566.51283: 566.51,
		1.005:     1.01,
		-2.675:    -2.68,
		10:        10,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	items := []float64{0.1, 0.2, 0.3}
	got := Sum(items, func(v float64) float64 { return v })
	if got != 0.6 {
		t.Fatalf("expected 0.6, got %v", got)
	}
}

func TestSub(t *testing.T) {
	if got := Sub(8566.514, 245.86, 260.42); got != 8060.23 {
		t.Fatalf("expected 8060.23, got %v", got)
	}
}

func TestFormat(t *testing.T) {
	cases := map[float64]string{
		0:          "DOP 0.00",
		1234.5:     "DOP 1,234.50",
		1234567.89: "DOP 1,234,567.89",
		-50000:     "DOP -50,000.00",
		999:        "DOP 999.00",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"RD$ 1.234,56", 1234.56, true},
		{"RD$1,234.56", 1234.56, true},
		{"1.500", 1500, true},
		{"12,5", 12.5, true},
		{"2,500,000", 2500000, true},
		{"1.234.567", 1234567, true},
		{"1447.00", 1447, true},
		{"-350.25", -350.25, true},
		{"-", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.raw)
		if ok != tc.ok {
			t.Fatalf("ParseAmount(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
