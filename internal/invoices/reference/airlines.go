package reference

type Airline struct {
	Code string
	Name string
}

// Airlines is the authoritative carrier table.
var Airlines = []Airline{
	{Code: "TK", Name: "Turkish Airlines"},
	{Code: "PC", Name: "Pegasus Airlines"},
	{Code: "XQ", Name: "SunExpress"},
	{Code: "VF", Name: "AJet"},
	{Code: "LH", Name: "Lufthansa"},
	{Code: "EW", Name: "Eurowings"},
	{Code: "DE", Name: "Condor"},
	{Code: "OS", Name: "Austrian Airlines"},
	{Code: "LX", Name: "Swiss International Air Lines"},
	{Code: "KL", Name: "KLM Royal Dutch Airlines"},
	{Code: "AF", Name: "Air France"},
	{Code: "BA", Name: "British Airways"},
	{Code: "FR", Name: "Ryanair"},
	{Code: "U2", Name: "easyJet"},
	{Code: "W6", Name: "Wizz Air"},
	{Code: "A3", Name: "Aegean Airlines"},
	{Code: "EK", Name: "Emirates"},
	{Code: "QR", Name: "Qatar Airways"},
	{Code: "EY", Name: "Etihad Airways"},
	{Code: "SV", Name: "Saudia"},
	{Code: "MS", Name: "EgyptAir"},
	{Code: "RJ", Name: "Royal Jordanian"},
	{Code: "ME", Name: "Middle East Airlines"},
	{Code: "J2", Name: "Azerbaijan Airlines"},
}

// ResolveAirline matches a code, a name, or both in either order, with or
// without parentheses.
func ResolveAirline(input string) Resolution {
	in := tokens(input)
	if len(in) == 0 {
		return Resolution{}
	}

	for _, a := range Airlines {
		name := tokens(a.Name)
		if sameTokens(in, []string{a.Code}) ||
			sameTokens(in, name) ||
			sameTokens(in, append(name, a.Code)) {
			return Resolution{Display: a.Name + " (" + a.Code + ")", Code: a.Code}
		}
	}
	return fallback(input)
}
