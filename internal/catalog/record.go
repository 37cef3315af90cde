// Package catalog defines the inventory record model shared by the scanner
// and the exporters.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// TimestampFormat is used for every timestamp rendered in exports and reports.
const TimestampFormat = "2006-01-02 15:04:05"

// Record is one inventory row: a single dataset inside a geodata container.
// Records are immutable once created.
type Record struct {
	ContainerName     string
	ContainerPath     string
	ContainerModified time.Time // zero when unknown

	// FeatureDataset is the containing feature dataset, empty for datasets
	// at the container's top level.
	FeatureDataset string

	DatasetName      string
	DatasetPath      string
	DatasetType      string
	GeometryType     string
	FeatureCount     *int64 // nil when counting failed or does not apply
	SpatialReference string
	Extent           *orb.Bound
}

// Sort orders records ascending by (container name, feature dataset,
// dataset name).
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ContainerName != b.ContainerName {
			return a.ContainerName < b.ContainerName
		}
		if a.FeatureDataset != b.FeatureDataset {
			return a.FeatureDataset < b.FeatureDataset
		}
		return a.DatasetName < b.DatasetName
	})
}

// Summary renders a one-paragraph console summary of the records.
func Summary(records []Record) string {
	containers := make(map[string]struct{})
	byType := make(map[string]int)
	for _, r := range records {
		containers[r.ContainerPath] = struct{}{}
		byType[r.DatasetType]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d dataset(s) across %d container(s)", len(records), len(containers))
	if len(byType) > 0 {
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, fmt.Sprintf("%d %s", byType[t], t))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

// FormatTime renders t in the report timestamp format, or "" for zero times.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampFormat)
}

// FormatExtent renders a bound as "minx, miny, maxx, maxy", or "" for nil.
func FormatExtent(b *orb.Bound) string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%g, %g, %g, %g", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}
