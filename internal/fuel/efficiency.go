package fuel

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorledger/motorledger-backend/pkg/db/models"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
)

// EfficiencyStats summarizes one set of fuel entries. Cost aggregates cover
// every entry; the consumption ratios only exist when at least two entries
// carry a usable odometer reading and the distance between them is positive.
type EfficiencyStats struct {
	Unit                   string           `json:"unit"`
	EntryCount             int              `json:"entry_count"`
	EntriesWithOdometer    int              `json:"entries_with_odometer"`
	EntriesWithoutOdometer int              `json:"entries_without_odometer"`
	TotalCost              decimal.Decimal  `json:"total_cost"`
	TotalAmount            decimal.Decimal  `json:"total_amount"`
	AverageCostPerFillUp   decimal.Decimal  `json:"average_cost_per_fill_up"`
	TotalKilometers        *int             `json:"total_kilometers,omitempty"`
	ConsumptionPer100km    *decimal.Decimal `json:"consumption_per_100km,omitempty"`
	DistancePerUnit        *decimal.Decimal `json:"distance_per_unit,omitempty"`
	CostPerKm              *decimal.Decimal `json:"cost_per_km,omitempty"`
}

// EfficiencyReport is the efficiency view for one vehicle. Hybrid vehicles
// additionally carry per-commodity buckets and a blended cost figure.
type EfficiencyReport struct {
	VehicleID        uuid.UUID         `json:"vehicle_id"`
	VehicleName      string            `json:"vehicle_name"`
	EnergyClass      enums.EnergyClass `json:"energy_class"`
	Overall          EfficiencyStats   `json:"overall"`
	Fuel             *EfficiencyStats  `json:"fuel,omitempty"`
	Electricity      *EfficiencyStats  `json:"electricity,omitempty"`
	BlendedCostPerKm *decimal.Decimal  `json:"blended_cost_per_km,omitempty"`
}

func (s *service) Efficiency(ctx context.Context, vehicleID, userID uuid.UUID) (*EfficiencyReport, error) {
	vehicle, err := s.resolveVehicle(ctx, vehicleID, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByVehicle(ctx, vehicleID, ListFilters{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fuel entries")
	}

	report := &EfficiencyReport{
		VehicleID:   vehicle.ID,
		VehicleName: vehicleLabel(vehicle),
		EnergyClass: vehicle.EnergyClass,
		Overall:     computeEfficiency(entries, overallUnit(vehicle.EnergyClass)),
	}

	if vehicle.EnergyClass.IsHybrid() {
		var fuelEntries, electricEntries []models.FuelEntry
		for _, entry := range entries {
			if entry.EnergyType == enums.EnergyTypeElectricity {
				electricEntries = append(electricEntries, entry)
			} else {
				fuelEntries = append(fuelEntries, entry)
			}
		}
		fuelStats := computeEfficiency(fuelEntries, "L")
		electricStats := computeEfficiency(electricEntries, "kWh")
		report.Fuel = &fuelStats
		report.Electricity = &electricStats
		report.BlendedCostPerKm = report.Overall.CostPerKm
	}

	return report, nil
}

// computeEfficiency derives the statistics for one bucket of entries.
//
// Odometer readings of zero are sentinels for "not recorded". The earliest
// odometer-bearing entry's amount is excluded from the consumption numerator:
// that purchase predates the distance window, so only fuel burned between the
// first and last readings counts against the kilometers driven. Cost
// aggregates always include every entry.
func computeEfficiency(entries []models.FuelEntry, unit string) EfficiencyStats {
	stats := EfficiencyStats{
		Unit:        unit,
		EntryCount:  len(entries),
		TotalCost:   decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	var withOdometer []models.FuelEntry
	for _, entry := range entries {
		stats.TotalCost = stats.TotalCost.Add(entry.Cost)
		stats.TotalAmount = stats.TotalAmount.Add(entry.Amount)
		if entry.Odometer != nil && *entry.Odometer > 0 {
			withOdometer = append(withOdometer, entry)
		}
	}
	stats.EntriesWithOdometer = len(withOdometer)
	stats.EntriesWithoutOdometer = stats.EntryCount - stats.EntriesWithOdometer

	if stats.EntryCount > 0 {
		stats.AverageCostPerFillUp = stats.TotalCost.
			Div(decimal.NewFromInt(int64(stats.EntryCount))).
			Round(2)
	}

	if len(withOdometer) < 2 {
		return stats
	}

	sort.Slice(withOdometer, func(i, j int) bool {
		return *withOdometer[i].Odometer < *withOdometer[j].Odometer
	})

	distance := *withOdometer[len(withOdometer)-1].Odometer - *withOdometer[0].Odometer
	if distance <= 0 {
		return stats
	}

	consumed := decimal.Zero
	for _, entry := range withOdometer[1:] {
		consumed = consumed.Add(entry.Amount)
	}

	km := decimal.NewFromInt(int64(distance))
	per100 := consumed.Div(km).Mul(decimal.NewFromInt(100)).Round(2)
	costPerKm := stats.TotalCost.Div(km).Round(4)

	stats.TotalKilometers = &distance
	stats.ConsumptionPer100km = &per100
	stats.CostPerKm = &costPerKm

	if consumed.IsPositive() {
		perUnit := km.Div(consumed).Round(2)
		stats.DistancePerUnit = &perUnit
	}

	return stats
}

func overallUnit(class enums.EnergyClass) string {
	if class == enums.EnergyClassElectric {
		return "kWh"
	}
	return "L"
}
