package market

// RegionKey identifies one of the fixed geographic markets.
type RegionKey string

// Region keys in canonical display order.
const (
	Moscow       RegionKey = "moscow"
	SaintPete    RegionKey = "spb"
	Novosibirsk  RegionKey = "novosibirsk"
	Ekaterinburg RegionKey = "ekaterinburg"
	Kazan        RegionKey = "kazan"
	Vladivostok  RegionKey = "vladivostok"
	Krasnodar    RegionKey = "krasnodar"
	Remote       RegionKey = "remote"
)

// Region holds the display name and scaling coefficients of a market.
type Region struct {
	Key        RegionKey
	Name       string
	SalaryCoef float64
	DemandCoef float64
}

var regionOrder = []RegionKey{
	Moscow, SaintPete, Novosibirsk, Ekaterinburg, Kazan, Vladivostok, Krasnodar, Remote,
}

var regions = map[RegionKey]Region{
	Moscow:       {Key: Moscow, Name: "Москва", SalaryCoef: 1.4, DemandCoef: 1.5},
	SaintPete:    {Key: SaintPete, Name: "Санкт-Петербург", SalaryCoef: 1.2, DemandCoef: 1.3},
	Novosibirsk:  {Key: Novosibirsk, Name: "Новосибирск", SalaryCoef: 0.9, DemandCoef: 0.9},
	Ekaterinburg: {Key: Ekaterinburg, Name: "Екатеринбург", SalaryCoef: 0.95, DemandCoef: 1.0},
	Kazan:        {Key: Kazan, Name: "Казань", SalaryCoef: 0.85, DemandCoef: 0.85},
	Vladivostok:  {Key: Vladivostok, Name: "Владивосток", SalaryCoef: 0.8, DemandCoef: 0.7},
	Krasnodar:    {Key: Krasnodar, Name: "Краснодар", SalaryCoef: 0.8, DemandCoef: 0.8},
	Remote:       {Key: Remote, Name: "Удаленная работа", SalaryCoef: 1.1, DemandCoef: 1.2},
}

// LookupRegion returns the table entry for key.
func LookupRegion(key RegionKey) (Region, bool) {
	r, ok := regions[key]
	return r, ok
}

// Regions returns every region in canonical order.
func Regions() []Region {
	out := make([]Region, 0, len(regionOrder))
	for _, k := range regionOrder {
		out = append(out, regions[k])
	}
	return out
}

// RegionKeys returns all region keys in canonical order.
func RegionKeys() []RegionKey {
	out := make([]RegionKey, len(regionOrder))
	copy(out, regionOrder)
	return out
}
