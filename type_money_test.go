package allocation

import "testing"

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m          Money
		want       string
		wantSigned string
	}{
		{usd(1234.5), "$1,234.50", "+$1,234.50"},
		{usd(-200), "-$200.00", "-$200.00"},
		{usd(0.001), "$0.00", "-"},
		{usd(544.752), "$544.75", "+$544.75"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.m.SignedString(); got != tt.wantSigned {
			t.Errorf("SignedString() = %q, want %q", got, tt.wantSigned)
		}
	}
}

func TestMoney_Ratio(t *testing.T) {
	if got := usd(1300).Ratio(usd(10000)); !got.Equal(P(0.13)) {
		t.Errorf("Ratio() = %v, want 13%%", got)
	}
	if got := usd(1300).Ratio(usd(0)); !got.IsZero() {
		t.Errorf("Ratio(0) = %v, want 0", got)
	}
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding USD to TWD should panic")
		}
	}()
	usd(1).Add(twd(1))
}

func TestPercent_String(t *testing.T) {
	tests := []struct {
		p          Percent
		want       string
		wantSigned string
	}{
		{P(0.13), "13.0%", "+13.0%"},
		{P(0.2059), "20.6%", "+20.6%"},
		{P(-0.02), "-2.0%", "-2.0%"},
		{P(0.0001), "0.0%", "-"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.p.SignedString(); got != tt.wantSigned {
			t.Errorf("SignedString() = %q, want %q", got, tt.wantSigned)
		}
	}
}
