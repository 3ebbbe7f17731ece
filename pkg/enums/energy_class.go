package enums

import (
	"fmt"
	"strings"
)

// EnergyClass categorizes what a vehicle runs on.
type EnergyClass string

const (
	EnergyClassGasoline     EnergyClass = "gasoline"
	EnergyClassDiesel       EnergyClass = "diesel"
	EnergyClassElectric     EnergyClass = "electric"
	EnergyClassHybrid       EnergyClass = "hybrid"
	EnergyClassPlugInHybrid EnergyClass = "plug_in_hybrid"
)

var validEnergyClasses = []EnergyClass{
	EnergyClassGasoline,
	EnergyClassDiesel,
	EnergyClassElectric,
	EnergyClassHybrid,
	EnergyClassPlugInHybrid,
}

// String implements fmt.Stringer.
func (c EnergyClass) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c EnergyClass) IsValid() bool {
	for _, candidate := range validEnergyClasses {
		if c == candidate {
			return true
		}
	}
	return false
}

// IsHybrid reports whether the vehicle can log more than one energy type.
func (c EnergyClass) IsHybrid() bool {
	return c == EnergyClassHybrid || c == EnergyClassPlugInHybrid
}

// ParseEnergyClass normalizes and validates raw input.
func ParseEnergyClass(value string) (EnergyClass, error) {
	normalized := EnergyClass(strings.ToLower(strings.TrimSpace(value)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid energy class %q", value)
	}
	return normalized, nil
}
