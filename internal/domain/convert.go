package domain

import "fmt"

const kgToLb = 2.2046226218

// WeightUnit is a display unit for weights. Stored weights are kilograms.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
)

// ParseWeightUnit accepts "kg" or "lb"; empty means kilograms.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch WeightUnit(s) {
	case "", Kilograms:
		return Kilograms, nil
	case Pounds:
		return Pounds, nil
	}
	return "", fmt.Errorf("unit must be %q or %q", Kilograms, Pounds)
}

// FromKilograms converts a stored weight into unit.
func FromKilograms(kg float64, unit WeightUnit) float64 {
	if unit == Pounds {
		return kg * kgToLb
	}
	return kg
}

// ToKilograms converts a weight entered in unit into storage form.
func ToKilograms(v float64, unit WeightUnit) float64 {
	if unit == Pounds {
		return v / kgToLb
	}
	return v
}
