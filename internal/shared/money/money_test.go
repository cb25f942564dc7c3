package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinor(t *testing.T) {
	cases := []struct {
		major string
		want  int64
	}{
		{"25", 2500},
		{"0.01", 1},
		{"19.99", 1999},
		{"1000", 100000},
	}
	for _, c := range cases {
		d, err := decimal.NewFromString(c.major)
		if err != nil {
			t.Fatalf("parse %q: %v", c.major, err)
		}
		if got := ToMinor(d); got != c.want {
			t.Errorf("ToMinor(%s) = %d, want %d", c.major, got, c.want)
		}
	}
}

func TestFromMinor(t *testing.T) {
	if got := FromMinor(2500); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("FromMinor(2500) = %s, want 25", got)
	}
	if got := FromMinor(1999); got.StringFixed(2) != "19.99" {
		t.Errorf("FromMinor(1999) = %s, want 19.99", got)
	}
}

// A minor-unit amount must survive a round trip unchanged; this is the
// double-conversion regression the conversion functions exist to prevent.
func TestRoundTrip(t *testing.T) {
	for _, minor := range []int64{1, 100, 2500, 99999} {
		if got := ToMinor(FromMinor(minor)); got != minor {
			t.Errorf("round trip %d -> %d", minor, got)
		}
	}
}

func TestFormat(t *testing.T) {
	d := decimal.NewFromInt(25)
	if got := Format("usd", d); got != "$25.00" {
		t.Errorf("Format(usd) = %q", got)
	}
	if got := Format("sek", d); got != "25.00 SEK" {
		t.Errorf("Format(sek) = %q", got)
	}
}
