package model

// Currency is a directory entry from the payments engine's
// GET /currencies/active listing.
type Currency struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Code            string  `json:"code"`
	DefaultCurrency bool    `json:"defaultCurrency"`
	RateToDefault   float64 `json:"rateToDefault"`
	Active          bool    `json:"active"`
}
