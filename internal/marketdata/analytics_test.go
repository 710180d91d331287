package marketdata

import "testing"

func TestFormatVolume(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{999.95, "999.9"},
		{1000, "1K"},
		{1050, "1K"},
		{1100, "1.1K"},
		{1999, "1.9K"},
		{999999, "999.9K"},
		{1e6, "1M"},
		{1234567, "1.2M"},
		{999999999, "999.9M"},
		{1e9, "1B"},
		{2500000000, "2.5B"},
		{1e12, "1T"},
		{1230000000000, "1.2T"},
	}
	for _, tc := range cases {
		if got := FormatVolume(tc.in); got != tc.want {
			t.Errorf("FormatVolume(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
