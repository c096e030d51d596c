package models

// GoldCardLookup is the result of checking a gold card number on the
// supplier's discount page.
type GoldCardLookup struct {
	Number          string  `json:"number"`
	Valid           bool    `json:"valid"`
	Holder          string  `json:"holder,omitempty"`
	DiscountPercent float64 `json:"discountPercent"`
}
