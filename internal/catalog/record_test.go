package catalog

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
)

func TestSort(t *testing.T) {
	records := []Record{
		{ContainerName: "b.gdb", FeatureDataset: "", DatasetName: "zeta"},
		{ContainerName: "a.gdb", FeatureDataset: "hydro", DatasetName: "rivers"},
		{ContainerName: "a.gdb", FeatureDataset: "", DatasetName: "roads"},
		{ContainerName: "a.gdb", FeatureDataset: "hydro", DatasetName: "lakes"},
		{ContainerName: "b.gdb", FeatureDataset: "", DatasetName: "alpha"},
	}

	Sort(records)

	want := []struct {
		container, fds, name string
	}{
		{"a.gdb", "", "roads"},
		{"a.gdb", "hydro", "lakes"},
		{"a.gdb", "hydro", "rivers"},
		{"b.gdb", "", "alpha"},
		{"b.gdb", "", "zeta"},
	}
	for i, w := range want {
		r := records[i]
		if r.ContainerName != w.container || r.FeatureDataset != w.fds || r.DatasetName != w.name {
			t.Errorf("records[%d] = (%s, %s, %s), want (%s, %s, %s)",
				i, r.ContainerName, r.FeatureDataset, r.DatasetName, w.container, w.fds, w.name)
		}
	}
}

func TestSummary(t *testing.T) {
	records := []Record{
		{ContainerPath: "/data/a.gdb", DatasetType: "FeatureClass"},
		{ContainerPath: "/data/a.gdb", DatasetType: "Table"},
		{ContainerPath: "/data/b.gpkg", DatasetType: "FeatureClass"},
	}
	got := Summary(records)
	want := "3 dataset(s) across 2 container(s) (2 FeatureClass, 1 Table)"
	if got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime(time.Time{}); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	ts := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	if got := FormatTime(ts); got != "2024-03-09 14:30:05" {
		t.Errorf("FormatTime = %q", got)
	}
}

func TestFormatExtent(t *testing.T) {
	if got := FormatExtent(nil); got != "" {
		t.Errorf("nil extent = %q, want empty", got)
	}
	b := orb.Bound{Min: orb.Point{-84.5, 39.0}, Max: orb.Point{-82.25, 41.75}}
	if got := FormatExtent(&b); got != "-84.5, 39, -82.25, 41.75" {
		t.Errorf("FormatExtent = %q", got)
	}
}
