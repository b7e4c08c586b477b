package factory

import (
	"testing"

	"github.com/ukydev/fleet-tracking/internal/models"
)

func TestValidateVIN(t *testing.T) {
	tests := []struct {
		name  string
		vin   string
		valid bool
	}{
		// 2003 Honda Accord, check digit 3 at position 9.
		{"valid honda", "1HGCM82633A004352", true},
		{"valid with X check digit", "91111111X11111111", true},
		{"mutated check digit", "1HGCM82634A004352", false},
		{"mutated data digit", "1HGCM82633A004353", false},
		{"too short", "1HGCM82633A00435", false},
		{"too long", "1HGCM82633A0043522", false},
		{"contains I", "1HGCM82633A00435I", false},
		{"contains O", "1HGCM82633A00435O", false},
		{"contains Q", "1HGCM82633A00435Q", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVIN(tt.vin)
			if tt.valid && err != nil {
				t.Errorf("ValidateVIN(%s) = %v, want nil", tt.vin, err)
			}
			if !tt.valid {
				if err == nil {
					t.Errorf("ValidateVIN(%s) = nil, want error", tt.vin)
				} else if !models.IsKind(err, models.KindInvalidVIN) {
					t.Errorf("ValidateVIN(%s) kind = %v, want invalid_vin", tt.vin, err)
				}
			}
		})
	}
}

func TestValidateVIN_IRejectedRegardlessOfChecksum(t *testing.T) {
	// Even if the transliteration table gave I a value that satisfied the
	// checksum, the character itself disqualifies the VIN.
	if err := ValidateVIN("IHGCM82633A004352"); err == nil {
		t.Error("expected VIN containing I to be rejected")
	}
}

func TestNormalizeVIN(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1hgcm82633a004352", "1HGCM82633A004352"},
		{"1HG-CM8 2633:A004352", "1HGCM82633A004352"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVIN(tt.in); got != tt.expected {
			t.Errorf("NormalizeVIN(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
