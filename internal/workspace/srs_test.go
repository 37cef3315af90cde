package workspace

import "testing"

func TestSRSNameFromWKT(t *testing.T) {
	tests := []struct {
		wkt  string
		want string
	}{
		{`PROJCS["NAD_1983_StatePlane_Ohio_North",GEOGCS["GCS_North_American_1983"]]`, "NAD_1983_StatePlane_Ohio_North"},
		{`GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984"]]`, "GCS_WGS_1984"},
		{`PROJCRS["WGS 84 / UTM zone 17N",BASEGEOGCRS["WGS 84"]]`, "WGS 84 / UTM zone 17N"},
		{"", ""},
		{"not wkt at all", ""},
		{`POINT(1 2)`, ""},
	}

	for _, tt := range tests {
		if got := SRSNameFromWKT(tt.wkt); got != tt.want {
			t.Errorf("SRSNameFromWKT(%q) = %q, want %q", tt.wkt, got, tt.want)
		}
	}
}
