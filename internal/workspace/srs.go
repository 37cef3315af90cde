package workspace

import "strings"

// SRSNameFromWKT extracts the display name from a WKT spatial reference
// definition, e.g. `PROJCS["NAD_1983_StatePlane_...",GEOGCS[...]]` yields
// NAD_1983_StatePlane_.... Returns "" when the string does not look like WKT.
func SRSNameFromWKT(wkt string) string {
	wkt = strings.TrimSpace(wkt)
	open := strings.IndexByte(wkt, '[')
	if open < 0 {
		return ""
	}
	keyword := strings.ToUpper(strings.TrimSpace(wkt[:open]))
	switch keyword {
	case "PROJCS", "GEOGCS", "GEOCCS", "COMPD_CS", "VERT_CS",
		"PROJCRS", "GEOGCRS", "VERTCRS", "COMPOUNDCRS":
	default:
		return ""
	}

	rest := wkt[open+1:]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end < 0 {
		return ""
	}
	return rest[start+1 : start+1+end]
}
