package domain

// FeatureKey identifies a geographic feature. Resolution of the key to a
// location belongs to the feature resolver, not to this package.
type FeatureKey string

// Metadata describes the dataset behind a pair collection. Only equality is
// relied on here; two Metadata are equal when every field is.
type Metadata struct {
	Feature  FeatureKey `json:"feature,omitempty"`
	Variable string     `json:"variable,omitempty"`
	Unit     string     `json:"unit,omitempty"`
	Scenario string     `json:"scenario,omitempty"`
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool { return m == Metadata{} }
