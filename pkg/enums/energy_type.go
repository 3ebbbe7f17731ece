package enums

import (
	"fmt"
	"strings"
)

// EnergyType identifies the commodity of a single fuel or charging event.
// It is narrower than a vehicle's EnergyClass: hybrids log both gasoline
// and electricity entries against one vehicle.
type EnergyType string

const (
	EnergyTypeGasoline    EnergyType = "gasoline"
	EnergyTypeDiesel      EnergyType = "diesel"
	EnergyTypeElectricity EnergyType = "electricity"
)

var validEnergyTypes = []EnergyType{
	EnergyTypeGasoline,
	EnergyTypeDiesel,
	EnergyTypeElectricity,
}

// String implements fmt.Stringer.
func (e EnergyType) String() string {
	return string(e)
}

// IsValid reports whether the value is known.
func (e EnergyType) IsValid() bool {
	for _, candidate := range validEnergyTypes {
		if e == candidate {
			return true
		}
	}
	return false
}

// Display returns the human-readable label used in notes and report payloads.
func (e EnergyType) Display() string {
	switch e {
	case EnergyTypeGasoline:
		return "Gasoline"
	case EnergyTypeDiesel:
		return "Diesel"
	case EnergyTypeElectricity:
		return "Electricity"
	}
	return "Unknown"
}

// Unit returns the measurement unit for the energy type.
func (e EnergyType) Unit() string {
	if e == EnergyTypeElectricity {
		return "kWh"
	}
	return "L"
}

// ParseEnergyType normalizes and validates raw input.
func ParseEnergyType(value string) (EnergyType, error) {
	normalized := EnergyType(strings.ToLower(strings.TrimSpace(value)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid energy type %q", value)
	}
	return normalized, nil
}
