package excel

// RentPerSquareFoot derives rent PSF from market rent and square footage.
// Returns nil unless both inputs are present and the square footage is
// positive; the raw quotient is kept at full precision, rounding is a
// display concern.
func RentPerSquareFoot(rent, sqft *float64) *float64 {
	if rent == nil || sqft == nil || *sqft <= 0 {
		return nil
	}
	v := *rent / *sqft
	return &v
}
