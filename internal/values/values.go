// Package values validates, normalizes, and generates the identifier values
// written into the bundle.
package values

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/idshift/idshift/internal/catalog"
)

// Addresses that must never be written into the bundle: all-zero, broadcast,
// and the fixed Apple iBridge address.
var reservedMACs = map[string]bool{
	"00:00:00:00:00:00": true,
	"ff:ff:ff:ff:ff:ff": true,
	"ac:de:48:00:11:22": true,
}

// Validate reports whether value is usable for the given identifier kind.
// The value is checked as given; see Normalize for the form that is
// actually spliced in.
func Validate(kind catalog.Kind, value string) error {
	switch kind {
	case catalog.KindMachineID:
		if isHex(value) || isUUID(value) {
			return nil
		}
		return fmt.Errorf("machineId must be a hex string or a UUID, got %q", value)
	case catalog.KindMacAddress:
		if !isMAC(value) {
			return fmt.Errorf("macAddress must be six hex octets separated by : or -, got %q", value)
		}
		if reservedMACs[canonicalMAC(value)] {
			return fmt.Errorf("macAddress %q is reserved", value)
		}
		return nil
	case catalog.KindSqmID:
		if value == "" || isUUID(unbrace(value)) {
			return nil
		}
		return fmt.Errorf("sqmId must be empty or a UUID, with or without braces, got %q", value)
	case catalog.KindDevDeviceID:
		if isUUID(value) {
			return nil
		}
		return fmt.Errorf("devDeviceId must be a UUID, got %q", value)
	default:
		return fmt.Errorf("unknown identifier kind %q", kind)
	}
}

// Normalize returns the form of value that is spliced into the bundle. Only
// sqmId is rewritten: the registry stores it as an uppercase UUID wrapped in
// braces, so a bare or lowercase UUID is brought into that shape. Other
// kinds pass through unchanged.
func Normalize(kind catalog.Kind, value string) string {
	if kind != catalog.KindSqmID || value == "" {
		return value
	}
	return "{" + strings.ToUpper(unbrace(value)) + "}"
}

// Generate produces a fresh value for the given identifier kind. sqmId
// generates empty, mirroring the registry fallback the patched code replaces.
func Generate(kind catalog.Kind) string {
	switch kind {
	case catalog.KindMacAddress:
		return randomMAC()
	case catalog.KindSqmID:
		return ""
	default:
		return uuid.NewString()
	}
}

// Random generates a fresh value for every identifier it is asked for.
type Random struct{}

func (Random) Provide(kind catalog.Kind) (string, error) {
	return Generate(kind), nil
}

// Fixed serves preset values and falls back to generation for kinds it has
// no value for. Preset values are validated and normalized on the way out.
type Fixed struct {
	Values map[catalog.Kind]string
}

func (f Fixed) Provide(kind catalog.Kind) (string, error) {
	value, ok := f.Values[kind]
	if !ok || value == "" {
		return Generate(kind), nil
	}
	if err := Validate(kind, value); err != nil {
		return "", err
	}
	return Normalize(kind, value), nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// isUUID accepts the canonical 8-4-4-4-12 form only.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if _, err := uuid.Parse(s); err != nil {
		return false
	}
	return true
}

func isMAC(s string) bool {
	if len(s) != 17 {
		return false
	}
	for i, r := range s {
		if i%3 == 2 {
			if r != ':' && r != '-' {
				return false
			}
		} else if !isHexDigit(r) {
			return false
		}
	}
	return true
}

// canonicalMAC lowercases and colon-separates a valid address for the
// reserved list lookup.
func canonicalMAC(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", ":"))
}

// unbrace strips one matched pair of surrounding braces.
func unbrace(s string) string {
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s[1 : len(s)-1]
	}
	return s
}

// randomMAC returns a locally administered unicast address, uppercase and
// colon separated. The first octet is 2 mod 4, which also keeps it off the
// reserved list.
func randomMAC() string {
	first := byte(rand.IntN(256))&0xFC | 0x02
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		first, byte(rand.IntN(256)), byte(rand.IntN(256)),
		byte(rand.IntN(256)), byte(rand.IntN(256)), byte(rand.IntN(256)))
}
