// Package countries resolves free-text tokens to recognized country
// names. A miss is an ordinary outcome signalled by the boolean return,
// never an error: locale strings routinely contain regions, cities, or
// labels like "Remote" that are not countries.
package countries

import "strings"

// Lookup resolves a token to its canonical country name. Matching is
// case-insensitive over English short names plus conventional aliases;
// leading and trailing whitespace is ignored.
func Lookup(token string) (string, bool) {
	name, ok := byName[strings.ToLower(strings.TrimSpace(token))]
	return name, ok
}

var byName = buildIndex()

func buildIndex() map[string]string {
	idx := make(map[string]string, len(names)+len(aliases))
	for _, n := range names {
		idx[strings.ToLower(n)] = n
	}
	for alias, canonical := range aliases {
		idx[strings.ToLower(alias)] = canonical
	}
	return idx
}

// names lists canonical English short names (ISO 3166-1).
var names = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola",
	"Antigua and Barbuda", "Argentina", "Armenia", "Australia",
	"Austria", "Azerbaijan", "Bahamas", "Bahrain", "Bangladesh",
	"Barbados", "Belarus", "Belgium", "Belize", "Benin", "Bhutan",
	"Bolivia", "Bosnia and Herzegovina", "Botswana", "Brazil",
	"Brunei Darussalam", "Bulgaria", "Burkina Faso", "Burundi",
	"Cabo Verde", "Cambodia", "Cameroon", "Canada",
	"Central African Republic", "Chad", "Chile", "China", "Colombia",
	"Comoros", "Congo", "Costa Rica", "Croatia", "Cuba", "Cyprus",
	"Czechia", "Denmark", "Djibouti", "Dominica", "Dominican Republic",
	"Ecuador", "Egypt", "El Salvador", "Equatorial Guinea", "Eritrea",
	"Estonia", "Eswatini", "Ethiopia", "Fiji", "Finland", "France",
	"Gabon", "Gambia", "Georgia", "Germany", "Ghana", "Greece",
	"Grenada", "Guatemala", "Guinea", "Guinea-Bissau", "Guyana",
	"Haiti", "Honduras", "Hong Kong", "Hungary", "Iceland", "India",
	"Indonesia", "Iran", "Iraq", "Ireland", "Israel", "Italy",
	"Jamaica", "Japan", "Jordan", "Kazakhstan", "Kenya", "Kiribati",
	"Kuwait", "Kyrgyzstan", "Laos", "Latvia", "Lebanon", "Lesotho",
	"Liberia", "Libya", "Liechtenstein", "Lithuania", "Luxembourg",
	"Madagascar", "Malawi", "Malaysia", "Maldives", "Mali", "Malta",
	"Marshall Islands", "Mauritania", "Mauritius", "Mexico",
	"Micronesia", "Moldova", "Monaco", "Mongolia", "Montenegro",
	"Morocco", "Mozambique", "Myanmar", "Namibia", "Nauru", "Nepal",
	"Netherlands", "New Zealand", "Nicaragua", "Niger", "Nigeria",
	"North Korea", "North Macedonia", "Norway", "Oman", "Pakistan",
	"Palau", "Panama", "Papua New Guinea", "Paraguay", "Peru",
	"Philippines", "Poland", "Portugal", "Puerto Rico", "Qatar",
	"Romania", "Russian Federation", "Rwanda", "Saint Kitts and Nevis",
	"Saint Lucia", "Saint Vincent and the Grenadines", "Samoa",
	"San Marino", "Sao Tome and Principe", "Saudi Arabia", "Senegal",
	"Serbia", "Seychelles", "Sierra Leone", "Singapore", "Slovakia",
	"Slovenia", "Solomon Islands", "Somalia", "South Africa",
	"South Korea", "South Sudan", "Spain", "Sri Lanka", "Sudan",
	"Suriname", "Sweden", "Switzerland", "Syria", "Taiwan",
	"Tajikistan", "Tanzania", "Thailand", "Timor-Leste", "Togo",
	"Tonga", "Trinidad and Tobago", "Tunisia", "Turkmenistan",
	"Tuvalu", "Türkiye", "Uganda", "Ukraine", "United Arab Emirates",
	"United Kingdom", "United States", "Uruguay", "Uzbekistan",
	"Vanuatu", "Venezuela", "Vietnam", "Yemen", "Zambia", "Zimbabwe",
}

// aliases maps conventional variants onto canonical names.
var aliases = map[string]string{
	"USA":                      "United States",
	"U.S.":                     "United States",
	"U.S.A.":                   "United States",
	"United States of America": "United States",
	"UK":                       "United Kingdom",
	"U.K.":                     "United Kingdom",
	"Great Britain":            "United Kingdom",
	"England":                  "United Kingdom",
	"Scotland":                 "United Kingdom",
	"Wales":                    "United Kingdom",
	"Northern Ireland":         "United Kingdom",
	"Russia":                   "Russian Federation",
	"Republic of Korea":        "South Korea",
	"Korea":                    "South Korea",
	"Czech Republic":           "Czechia",
	"Turkey":                   "Türkiye",
	"UAE":                      "United Arab Emirates",
	"Ivory Coast":              "Côte d'Ivoire",
	"Cote d'Ivoire":            "Côte d'Ivoire",
	"Côte d'Ivoire":            "Côte d'Ivoire",
	"Cape Verde":               "Cabo Verde",
	"Burma":                    "Myanmar",
	"Swaziland":                "Eswatini",
	"The Netherlands":          "Netherlands",
	"Holland":                  "Netherlands",
	"Macedonia":                "North Macedonia",
	"East Timor":               "Timor-Leste",
	"Brunei":                   "Brunei Darussalam",
	"Viet Nam":                 "Vietnam",
	"DR Congo":                 "Congo",
	"Democratic Republic of the Congo": "Congo",
}
