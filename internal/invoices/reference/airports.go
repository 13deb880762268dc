package reference

import "strings"

type Airport struct {
	Code string
	City string
}

// Airports lists the city shown for each code. Some cities carry a suffix
// to tell their airports apart.
var Airports = []Airport{
	{Code: "IST", City: "Istanbul"},
	{Code: "SAW", City: "Istanbul-Sabiha"},
	{Code: "ESB", City: "Ankara"},
	{Code: "ADB", City: "Izmir"},
	{Code: "AYT", City: "Antalya"},
	{Code: "DLM", City: "Dalaman"},
	{Code: "BJV", City: "Bodrum"},
	{Code: "ADA", City: "Adana"},
	{Code: "ASR", City: "Kayseri"},
	{Code: "DIY", City: "Diyarbakir"},
	{Code: "ERZ", City: "Erzurum"},
	{Code: "GZT", City: "Gaziantep"},
	{Code: "HTY", City: "Hatay"},
	{Code: "KYA", City: "Konya"},
	{Code: "MLX", City: "Malatya"},
	{Code: "SZF", City: "Samsun"},
	{Code: "TZX", City: "Trabzon"},
	{Code: "VAN", City: "Van"},
	{Code: "FRA", City: "Frankfurt"},
	{Code: "HHN", City: "Frankfurt-Hahn"},
	{Code: "MUC", City: "München"},
	{Code: "DUS", City: "Düsseldorf"},
	{Code: "CGN", City: "Köln-Bonn"},
	{Code: "HAM", City: "Hamburg"},
	{Code: "BER", City: "Berlin"},
	{Code: "STR", City: "Stuttgart"},
	{Code: "HAJ", City: "Hannover"},
	{Code: "NUE", City: "Nürnberg"},
	{Code: "DTM", City: "Dortmund"},
	{Code: "FMO", City: "Münster"},
	{Code: "PAD", City: "Paderborn"},
	{Code: "BRE", City: "Bremen"},
	{Code: "LEJ", City: "Leipzig"},
	{Code: "FDH", City: "Friedrichshafen"},
	{Code: "VIE", City: "Wien"},
	{Code: "ZRH", City: "Zürich"},
	{Code: "BSL", City: "Basel"},
	{Code: "AMS", City: "Amsterdam"},
}

var airportByCode = func() map[string]Airport {
	m := make(map[string]Airport, len(Airports))
	for _, a := range Airports {
		m[a.Code] = a
	}
	return m
}()

// ResolveAirport finds a known code anywhere in the input, then falls back
// to an exact city match.
func ResolveAirport(input string) Resolution {
	in := tokens(input)
	if len(in) == 0 {
		return Resolution{}
	}

	for _, t := range in {
		if a, ok := airportByCode[t]; ok {
			return display(a)
		}
	}

	joined := strings.Join(in, " ")
	for _, a := range Airports {
		if strings.Join(tokens(a.City), " ") == joined {
			return display(a)
		}
	}
	return fallback(input)
}

func display(a Airport) Resolution {
	return Resolution{Display: a.City + "(" + a.Code + ")", Code: a.Code}
}
