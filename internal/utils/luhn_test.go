package utils

import "testing"

func TestValidateLuhn(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"valid simple", "79927398713", true},
		{"valid short", "42", true}, // 4*2=8, 8+2=10
		{"invalid", "79927398714", false},
		{"non digit", "12a45", false},
		{"empty", "", false},
		{"leading zeros", "0000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLuhn(tt.number); got != tt.want {
				t.Errorf("ValidateLuhn(%s) = %v, want %v", tt.number, got, tt.want)
			}
		})
	}
}

func TestLuhnCheckDigit(t *testing.T) {
	tests := []struct {
		payload string
		want    byte
		ok      bool
	}{
		{"7992739871", '3', true},
		{"4", '2', true},
		{"000", '0', true},
		{"12a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := LuhnCheckDigit(tt.payload)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("LuhnCheckDigit(%s) = %q, %v; want %q, %v", tt.payload, got, ok, tt.want, tt.ok)
			}
			if ok && !ValidateLuhn(tt.payload+string(got)) {
				t.Errorf("payload with check digit %q does not validate", got)
			}
		})
	}
}
