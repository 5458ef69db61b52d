// Package schema has models, constants and render types for all parts of tierank.
package schema

// Ingredient is one ingredient-amount pair on a product label.
type Ingredient struct {
	GroupKey string  `json:"group_key" yaml:"group_key" validate:"required,max=128"`
	AmountMg float64 `json:"amount_mg" yaml:"amount_mg" validate:"gte=0"`
	Primary  bool    `json:"primary,omitempty" yaml:"primary"`
}

// Product is a read-only catalog record as supplied by the catalog layer.
type Product struct {
	ID                   string       `json:"id" yaml:"id" validate:"required,max=128"`
	Name                 string       `json:"name,omitempty" yaml:"name" validate:"max=256"`
	Price                float64      `json:"price" yaml:"price"`
	ServingsPerContainer int          `json:"servings_per_container" yaml:"servings_per_container"`
	ServingsPerDay       int          `json:"servings_per_day" yaml:"servings_per_day"`
	Ingredients          []Ingredient `json:"ingredients,omitempty" yaml:"ingredients" validate:"dive"`
	Evidence             string       `json:"evidence,omitempty" yaml:"evidence" validate:"max=64"`
	SideEffects          []string     `json:"side_effects,omitempty" yaml:"side_effects"`
	Interactions         []string     `json:"interactions,omitempty" yaml:"interactions"`
}

// PrimaryIngredient returns the flagged primary ingredient, or the first
// listed ingredient when none is flagged.
func (p Product) PrimaryIngredient() (Ingredient, bool) {
	for _, ing := range p.Ingredients {
		if ing.Primary {
			return ing, true
		}
	}
	if len(p.Ingredients) > 0 {
		return p.Ingredients[0], true
	}
	return Ingredient{}, false
}

// MetricRecord holds the raw axis values of one product for one evaluation run.
// An axis missing from AxisValues was not computable.
type MetricRecord struct {
	ProductID       string           `json:"product_id"`
	PrimaryGroupKey string           `json:"primary_group_key,omitempty"`
	AxisValues      map[Axis]float64 `json:"axis_values"`
}

// Value returns the raw value of an axis and whether it was computable.
func (m MetricRecord) Value(axis Axis) (float64, bool) {
	v, ok := m.AxisValues[axis]
	return v, ok
}

// Population is the ordered set of raw values a subject is ranked against.
type Population struct {
	Axis     Axis      `json:"axis"`
	GroupKey string    `json:"group_key,omitempty"`
	Values   []float64 `json:"values"`
}

// Size returns the number of values in the population.
func (p Population) Size() int {
	return len(p.Values)
}
