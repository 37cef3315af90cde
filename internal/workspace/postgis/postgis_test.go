package postgis

import "testing"

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		schema, table, want string
	}{
		{"public", "roads", `"public"."roads"`},
		{"hydro", `we"ird`, `"hydro"."we""ird"`},
	}
	for _, tt := range tests {
		if got := QualifiedName(tt.schema, tt.table); got != tt.want {
			t.Errorf("QualifiedName(%q, %q) = %s, want %s", tt.schema, tt.table, got, tt.want)
		}
	}
}

func TestSchemaScope(t *testing.T) {
	d := &Database{}
	if got := d.schema(); got != "public" {
		t.Errorf("default schema = %q, want public", got)
	}
	d.SetDataset("transportation")
	if got := d.schema(); got != "transportation" {
		t.Errorf("scoped schema = %q", got)
	}
	d.SetDataset("")
	if got := d.schema(); got != "public" {
		t.Errorf("reset schema = %q, want public", got)
	}
}
