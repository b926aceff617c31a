package market

type InstrumentMeta struct {
	Name             string
	BaseCurrency     string
	QuoteCurrency    string
	Point            float64 // smallest price increment
	DisplayPrecision int
	MinimumTradeSize float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		Point:            0.00001,
		DisplayPrecision: 5,
		MinimumTradeSize: 1,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "USD",
		Point:            0.00001,
		DisplayPrecision: 5,
		MinimumTradeSize: 1,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		BaseCurrency:     "USD",
		QuoteCurrency:    "JPY",
		Point:            0.001,
		DisplayPrecision: 3,
		MinimumTradeSize: 1,
	},
	"XAU_USD": {
		Name:             "XAU_USD",
		BaseCurrency:     "XAU",
		QuoteCurrency:    "USD",
		Point:            0.01,
		DisplayPrecision: 2,
		MinimumTradeSize: 1,
	},
}

// PointsBetween converts a price move to points for the instrument.
// Unknown instruments fall back to a point size of 0.00001.
func PointsBetween(instrument string, from, to float64) float64 {
	point := 0.00001
	if meta, ok := Instruments[instrument]; ok && meta.Point > 0 {
		point = meta.Point
	}
	return (to - from) / point
}

// PointSize returns the point size for the instrument, or the
// five-decimal FX default when the instrument is unknown.
func PointSize(instrument string) float64 {
	if meta, ok := Instruments[instrument]; ok && meta.Point > 0 {
		return meta.Point
	}
	return 0.00001
}
