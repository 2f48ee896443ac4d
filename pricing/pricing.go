// Package pricing derives an integer price from printed mass and the
// (technology, material) pair, using a static per-gram rate table.
package pricing

// Per-gram rates. Pairs outside the table fall back to DefaultRate.
const (
	DefaultRate = 1000
	rateFDMPLA  = 1000
	rateFDMABS  = 1200
	rateResin   = 3000
)

var rateTable = map[[2]string]int{
	{"FDM", "PLA"}:     rateFDMPLA,
	{"FDM", "ABS"}:     rateFDMABS,
	{"Resin", "Resin"}: rateResin,
}

// Quote is a priced (technology, material, mass) combination.
type Quote struct {
	Price    int    `json:"price"`
	Tech     string `json:"tech"`
	Material string `json:"material"`
}

// Rate returns the per-gram rate for a technology/material pair.
func Rate(tech, material string) int {
	if r, ok := rateTable[[2]string{tech, material}]; ok {
		return r
	}
	return DefaultRate
}

// Calculate prices a print of massGrams with the given technology and
// material. Pure lookup and multiplication; the fraction is truncated.
func Calculate(massGrams float64, tech, material string) Quote {
	return Quote{
		Price:    int(massGrams * float64(Rate(tech, material))),
		Tech:     tech,
		Material: material,
	}
}
