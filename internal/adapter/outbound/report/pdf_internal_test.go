package report

import "testing"

func TestPDFRenderer_Money(t *testing.T) {
	tests := []struct {
		currency string
		want     string
	}{
		{DefaultCurrency, "INR 63000.00"},
		{" EUR ", "EUR 63000.00"},
		{"", "63000.00"},
	}
	for _, tt := range tests {
		r := NewPDFRenderer("").WithCurrency(tt.currency)
		if got := r.money(63000); got != tt.want {
			t.Errorf("currency %q: money = %q, want %q", tt.currency, got, tt.want)
		}
	}
	if got := NewPDFRenderer("").money(18510.5); got != "INR 18510.50" {
		t.Errorf("default money = %q", got)
	}
}
