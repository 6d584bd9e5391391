package service

import (
	"regexp"
	"strings"
)

// retailDomains is the curated allow-list of retail sites product search is
// restricted to.
var retailDomains = []string{
	"armaniexchange.com",
	"ae.com",
	"hm.com",
	"target.com",
	"forever21.com",
	"shein.com",
	"uniqlo.com",
	"zara.com",
	"nordstrom.com",
	"asos.com",
	"fashionnova.com",
	"coach.com",
}

// storeNames maps a normalized store key (link domain without www/.com) to
// its display label. Extend this table to add retailers; resolution logic
// never needs to change.
var storeNames = map[string]string{
	"macys":          "Macys",
	"target":         "Target",
	"forever21":      "Forever 21",
	"hm":             "H&M",
	"zara":           "Zara",
	"asos":           "ASOS",
	"uniqlo":         "Uniqlo",
	"shein":          "Shein",
	"ae":             "AE",
	"armaniexchange": "AX",
	"fashionnova":    "Fashion Nova",
	"coach":          "Coach",
	"nordstrom":      "Nordstrom",
}

var storeDomainRe = regexp.MustCompile(`(?:www\.)?([\w-]+)\.com`)

// storeKey extracts the normalized store identity from a result link.
func storeKey(link string) string {
	m := storeDomainRe.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// storeLabel returns the display label for a store key.
func storeLabel(key string) string {
	if name, ok := storeNames[key]; ok {
		return name
	}
	if key != "" {
		return key
	}
	return "Shop"
}

// siteRestriction builds the OR-joined site filter clause appended to every
// product search query.
func siteRestriction() string {
	clauses := make([]string, len(retailDomains))
	for i, site := range retailDomains {
		clauses[i] = "site:" + site
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}
