package entity

// Budget is a spending threshold for one category
type Budget struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Validate ensures the budget targets a known category with a non-negative amount
func (b Budget) Validate() error {
	if !IsKnownCategory(b.Category) {
		return &ValidationError{Fields: []string{"category"}, Reason: "unknown category " + b.Category}
	}
	if !IsFinite(b.Amount) {
		return &ValidationError{Fields: []string{"amount"}, Reason: "budget must be a finite number"}
	}
	if b.Amount < 0 {
		return &ValidationError{Fields: []string{"amount"}, Reason: "budget must not be negative"}
	}
	return nil
}
