package factory

import (
	"strings"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// vinWeights are the ISO 3779 position weights; the check digit at index 8
// carries weight 0 so it does not contribute to its own checksum.
var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// vinValues is the ISO 3779 letter transliteration table. I, O and Q are not
// assignable in a VIN and are absent.
var vinValues = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
}

// NormalizeVIN upper-cases a VIN and strips non-alphanumeric characters. It
// does not validate; pair with ValidateVIN.
func NormalizeVIN(vin string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(vin) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateVIN checks VIN format and the ISO 3779 check-digit relation: the
// weighted transliteration sum modulo 11 must equal the 9th character (digit
// 0-9, or 'X' for remainder 10). The returned error is advisory; callers
// decide whether an invalid VIN rejects the vehicle or merely flags it.
func ValidateVIN(vin string) error {
	if len(vin) != 17 {
		return models.NewInvalidVINError("VIN must be exactly 17 characters, got %d", len(vin))
	}
	if strings.ContainsAny(vin, "IOQioq") {
		return models.NewInvalidVINError("VIN must not contain I, O or Q")
	}

	sum := 0
	for i := 0; i < 17; i++ {
		value, ok := vinValues[vin[i]]
		if !ok {
			return models.NewInvalidVINError("VIN contains invalid character %q at position %d", vin[i], i+1)
		}
		sum += value * vinWeights[i]
	}

	remainder := sum % 11
	expected := byte('0' + remainder)
	if remainder == 10 {
		expected = 'X'
	}
	if vin[8] != expected {
		return models.NewInvalidVINError("VIN check digit mismatch: got %q, expected %q", vin[8], expected)
	}
	return nil
}
