package enums

import (
	"fmt"
	"strings"
)

// ExpenseCategory buckets ledger entries for reporting. The set is stable:
// categories are stored as strings, never renumbered. CategoryFuel is reserved
// for shadow expenses written by the fuel linkage flow and is rejected on the
// public expense paths.
type ExpenseCategory string

const (
	CategoryFuel          ExpenseCategory = "fuel"
	CategoryMaintenance   ExpenseCategory = "maintenance"
	CategoryInsurance     ExpenseCategory = "insurance"
	CategoryRegistration  ExpenseCategory = "registration"
	CategoryRepairs       ExpenseCategory = "repairs"
	CategoryParking       ExpenseCategory = "parking"
	CategoryTolls         ExpenseCategory = "tolls"
	CategoryCarWash       ExpenseCategory = "car_wash"
	CategoryModifications ExpenseCategory = "modifications"
	CategoryOther         ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	CategoryFuel,
	CategoryMaintenance,
	CategoryInsurance,
	CategoryRegistration,
	CategoryRepairs,
	CategoryParking,
	CategoryTolls,
	CategoryCarWash,
	CategoryModifications,
	CategoryOther,
}

// String implements fmt.Stringer.
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// IsUserSelectable reports whether the category may be chosen through the
// public expense endpoints.
func (c ExpenseCategory) IsUserSelectable() bool {
	return c.IsValid() && c != CategoryFuel
}

// Display returns the report-facing label.
func (c ExpenseCategory) Display() string {
	switch c {
	case CategoryFuel:
		return "Fuel"
	case CategoryMaintenance:
		return "Maintenance"
	case CategoryInsurance:
		return "Insurance"
	case CategoryRegistration:
		return "Registration"
	case CategoryRepairs:
		return "Repairs"
	case CategoryParking:
		return "Parking"
	case CategoryTolls:
		return "Tolls"
	case CategoryCarWash:
		return "Car Wash"
	case CategoryModifications:
		return "Modifications"
	case CategoryOther:
		return "Other"
	}
	return "Unknown"
}

// ParseExpenseCategory normalizes and validates raw input.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	normalized := ExpenseCategory(strings.ToLower(strings.TrimSpace(value)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid expense category %q", value)
	}
	return normalized, nil
}
