// market/venues.go
package market

// Venue identifies a broker/exchange source. Simulation is an ordinary
// venue: it shares the same balance bookkeeping as every other source.
type Venue string

const (
	Simulation  Venue = "simulation"
	Binance     Venue = "binance"
	FBS         Venue = "fbs"
	Exness      Venue = "exness"
	XM          Venue = "xm"
	ICMarkets   Venue = "ic_markets"
	HFM         Venue = "hfm"
	Pepperstone Venue = "pepperstone"
	IGGroup     Venue = "ig_group"
	Plus500     Venue = "plus500"
	OctaFX      Venue = "octafx"
	IBKR        Venue = "ibkr"
)

// VenueMeta describes a venue's trading conventions. CryptoStyle venues
// quote order size in stablecoin notional; forex-style venues quote lots.
type VenueMeta struct {
	Name        string
	MaxLeverage int
	MinVolume   float64
	VolumeUnit  string
	CryptoStyle bool
	Instruments []string
}

var cryptoSet = []string{"BTC", "ETH", "SOL", "BNB"}
var forexSet = []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD"}

// Venues is the fixed registry of supported sources.
var Venues = map[Venue]VenueMeta{
	Simulation: {
		Name: "Simulation", MaxLeverage: 125, MinVolume: 10,
		VolumeUnit: "USDT", CryptoStyle: true, Instruments: cryptoSet,
	},
	Binance: {
		Name: "Binance", MaxLeverage: 125, MinVolume: 10,
		VolumeUnit: "USDT", CryptoStyle: true, Instruments: cryptoSet,
	},
	FBS: {
		Name: "FBS Broker", MaxLeverage: 3000, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	Exness: {
		Name: "Exness", MaxLeverage: 2000, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	XM: {
		Name: "XM Global", MaxLeverage: 1000, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	ICMarkets: {
		Name: "IC Markets", MaxLeverage: 500, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	HFM: {
		Name: "HFM", MaxLeverage: 2000, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	Pepperstone: {
		Name: "Pepperstone", MaxLeverage: 500, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	IGGroup: {
		Name: "IG Group", MaxLeverage: 200, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	Plus500: {
		Name: "Plus500", MaxLeverage: 300, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	OctaFX: {
		Name: "OctaFX", MaxLeverage: 1000, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
	IBKR: {
		Name: "Interactive Brokers", MaxLeverage: 100, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	},
}

// Meta returns the venue's metadata, or a conservative forex-style default
// for venues outside the registry.
func (v Venue) Meta() VenueMeta {
	if m, ok := Venues[v]; ok {
		return m
	}
	return VenueMeta{
		Name: string(v), MaxLeverage: 100, MinVolume: 0.01,
		VolumeUnit: "lots", Instruments: forexSet,
	}
}

// CryptoStyle reports whether order amounts on this venue are stablecoin
// notional rather than lots.
func (v Venue) CryptoStyle() bool { return v.Meta().CryptoStyle }

// ClampLeverage bounds a requested leverage to [1, MaxLeverage].
func (v Venue) ClampLeverage(lev int) int {
	m := v.Meta()
	if lev < 1 {
		return 1
	}
	if lev > m.MaxLeverage {
		return m.MaxLeverage
	}
	return lev
}
