package tradetax

import (
	"encoding/json"
	"testing"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m      Money
		plain  string
		signed string
	}{
		{M(1234.567, "USD"), "$1,234.57", "+$1,234.57"},
		{M(-15.0, "USD"), "-$15.00", "-$15.00"},
		{M(15.0, "USD").Neg(), "-$15.00", "-$15.00"},
		{M(0.001, "USD"), "$0.00", "-"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.plain {
			t.Errorf("String() = %q, want %q", got, tt.plain)
		}
		if got := tt.m.SignedString(); got != tt.signed {
			t.Errorf("SignedString() = %q, want %q", got, tt.signed)
		}
	}
}

func TestMoney_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(M(10.005, "USD").Add(M(1, "")))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"currency":"USD","amount":"11.01"}`; string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
