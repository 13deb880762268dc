package render

import "travelbook/pkg/locale"

var translations = map[locale.Language]map[string]string{
	locale.English: {
		"title":          "Invoice",
		"group_title":    "Collective invoice",
		"date":           "Date",
		"invoice_no":     "Invoice no.",
		"departure":      "Departure",
		"return":         "Return",
		"airline":        "Airline",
		"pnr":            "Booking reference",
		"passenger":      "Passenger",
		"customer":       "Customer",
		"ticket_no":      "Ticket no.",
		"reference":      "Reference",
		"ticket":         "Ticket",
		"visa":           "Visa",
		"hotel":          "Hotel",
		"sum":            "Amount",
		"total":          "Total",
		"grand_total":    "Grand total",
		"paid":           "Paid",
		"outstanding":    "Outstanding",
		"notice":         "Notice",
		"confirmation":   "We hereby confirm the booking of the flights listed above for the named passengers. Please check all names and travel dates against the passports and report any discrepancy to us immediately. Changes and cancellations are subject to the fare conditions of the airline.",
		"tax_note":       "Exempt from VAT under Section 4 No. 5 of the German VAT Act (agency service).",
		"signature":      "Signature / Stamp",
		"page":           "Page",
		"phone":          "Phone",
		"email":          "Email",
		"web":            "Web",
		"tax_id":         "Tax ID",
		"bank":           "Bank",
		"account_holder": "Account holder",
		"iban":           "IBAN",
		"bic":            "BIC",
		"owner":          "Owner",
		"unverified":     "unverified",
		"print":          "Print",
		"download":       "Download PDF",
		"switch_lang":    "Deutsch",
	},
	locale.German: {
		"title":          "Rechnung",
		"group_title":    "Sammelrechnung",
		"date":           "Datum",
		"invoice_no":     "Rechnungsnr.",
		"departure":      "Hinflug",
		"return":         "Rückflug",
		"airline":        "Fluggesellschaft",
		"pnr":            "Buchungscode",
		"passenger":      "Reisender",
		"customer":       "Kunde",
		"ticket_no":      "Ticketnr.",
		"reference":      "Referenz",
		"ticket":         "Ticket",
		"visa":           "Visum",
		"hotel":          "Hotel",
		"sum":            "Betrag",
		"total":          "Gesamt",
		"grand_total":    "Gesamtsumme",
		"paid":           "Bezahlt",
		"outstanding":    "Offen",
		"notice":         "Hinweis",
		"confirmation":   "Hiermit bestätigen wir die Buchung der oben aufgeführten Flüge für die genannten Reisenden. Bitte prüfen Sie alle Namen und Reisedaten anhand der Reisepässe und teilen Sie uns Abweichungen umgehend mit. Änderungen und Stornierungen unterliegen den Tarifbedingungen der Fluggesellschaft.",
		"tax_note":       "Umsatzsteuerfrei gemäß § 4 Nr. 5 UStG (Vermittlungsleistung).",
		"signature":      "Unterschrift / Stempel",
		"page":           "Seite",
		"phone":          "Telefon",
		"email":          "E-Mail",
		"web":            "Web",
		"tax_id":         "Steuernr.",
		"bank":           "Bank",
		"account_holder": "Kontoinhaber",
		"iban":           "IBAN",
		"bic":            "BIC",
		"owner":          "Inhaber",
		"unverified":     "ungeprüft",
		"print":          "Drucken",
		"download":       "PDF herunterladen",
		"switch_lang":    "English",
	},
}

// T looks up key for lang, falling back to German and then to the key.
func T(lang locale.Language, key string) string {
	if s, ok := translations[lang][key]; ok {
		return s
	}
	if s, ok := translations[locale.German][key]; ok {
		return s
	}
	return key
}
