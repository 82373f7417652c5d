package refdata

// Currencies are the ISO 4217 codes accepted on expense and receipt records.
var Currencies = []string{
	"EUR", "USD", "GBP", "CHF", "SEK", "NOK", "DKK", "PLN", "CZK", "HUF",
	"RON", "BGN", "HRK", "TRY", "CNY", "JPY", "KRW", "INR", "SGD", "HKD",
	"AUD", "NZD", "CAD", "MXN", "BRL", "ZAR", "AED", "SAR", "THB", "VND",
}

// Countries are the ISO 3166-1 alpha-2 codes accepted in the land field.
var Countries = []string{
	"DE", "AT", "CH", "FR", "IT", "ES", "PT", "NL", "BE", "LU",
	"DK", "SE", "NO", "FI", "PL", "CZ", "SK", "HU", "SI", "HR",
	"RO", "BG", "GR", "IE", "GB", "US", "CA", "MX", "BR", "CN",
	"JP", "KR", "IN", "SG", "TH", "VN", "AU", "NZ", "ZA", "AE",
	"SA", "TR",
}
