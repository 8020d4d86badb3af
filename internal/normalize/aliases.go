package normalize

// aliases maps already-normalized alternate names to the already-normalized
// form used by the risk table. Both key and value are in post-fold form, and
// no value may itself be an alias key (single-hop resolution).
var aliases = map[string]string{
	"turkiye":              "turkey",
	"ivory coast":          "cote d ivoire",
	"drc":                  "democratic republic of congo",
	"dr congo":             "democratic republic of congo",
	"congo kinshasa":       "democratic republic of congo",
	"congo drc":            "democratic republic of congo",
	"congo brazzaville":    "republic of congo",
	"congo":                "republic of congo",
	"swaziland":            "eswatini",
	"cape verde":           "cabo verde",
	"burma":                "myanmar",
	"east timor":           "timor leste",
	"uae":                  "united arab emirates",
	"usa":                  "united states of america",
	"united states":        "united states of america",
	"uk":                   "united kingdom",
	"great britain":        "united kingdom",
	"holland":              "netherlands",
	"czechia":              "czech republic",
	"macedonia":            "north macedonia",
	"south korea":          "republic of korea",
	"north korea":          "democratic people s republic of korea",
	"laos":                 "lao people s democratic republic",
	"russia":               "russian federation",
	"syria":                "syrian arab republic",
	"iran":                 "islamic republic of iran",
	"tanzania":             "united republic of tanzania",
	"bolivia":              "plurinational state of bolivia",
	"venezuela":            "bolivarian republic of venezuela",
	"vietnam":              "viet nam",
	"moldova":              "republic of moldova",
	"brunei":               "brunei darussalam",
	"saudi":                "saudi arabia",
	"ksa":                  "saudi arabia",
}
