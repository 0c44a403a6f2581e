package domain

// MarketRecord is one historical observation of the AI market for a single year.
// Records are immutable once loaded.
type MarketRecord struct {
	Year         int     `json:"year" validate:"min=1900,max=3000"`
	MarketSize   float64 `json:"market_size" validate:"min=0"`
	AdoptionRate float64 `json:"adoption_rate" validate:"min=0,max=100"`
}

// Dataset is the ordered sequence of historical records as read from the source file.
type Dataset []MarketRecord

// Len returns the number of records
func (d Dataset) Len() int {
	return len(d)
}

// Years returns the year feature as float64 values, in dataset order
func (d Dataset) Years() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = float64(r.Year)
	}
	return out
}

// MarketSizes returns the market size target, in dataset order
func (d Dataset) MarketSizes() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.MarketSize
	}
	return out
}

// AdoptionRates returns the adoption rate target, in dataset order
func (d Dataset) AdoptionRates() []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.AdoptionRate
	}
	return out
}

// FirstYear returns the year of the first record, or 0 for an empty dataset
func (d Dataset) FirstYear() int {
	if len(d) == 0 {
		return 0
	}
	return d[0].Year
}

// LastYear returns the year of the last record, or 0 for an empty dataset
func (d Dataset) LastYear() int {
	if len(d) == 0 {
		return 0
	}
	return d[len(d)-1].Year
}

// Head returns at most n leading records
func (d Dataset) Head(n int) Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d) {
		n = len(d)
	}
	return d[:n]
}
