package enums

import "fmt"

// MetalType enumerates the metals a piece of jewelry can be cast in.
type MetalType string

const (
	MetalTypeGold      MetalType = "gold"
	MetalTypeSilver    MetalType = "silver"
	MetalTypePlatinum  MetalType = "platinum"
	MetalTypeWhiteGold MetalType = "white_gold"
)

var validMetalTypes = []MetalType{
	MetalTypeGold,
	MetalTypeSilver,
	MetalTypePlatinum,
	MetalTypeWhiteGold,
}

// String implements fmt.Stringer.
func (m MetalType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MetalType.
func (m MetalType) IsValid() bool {
	for _, candidate := range validMetalTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMetalType converts raw input into a MetalType.
func ParseMetalType(value string) (MetalType, error) {
	for _, candidate := range validMetalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metal type %q", value)
}
