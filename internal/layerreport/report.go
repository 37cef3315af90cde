// Package layerreport assembles the markdown metadata report over a set of
// layer files: per-file stats, per-layer source and field details, rendering
// properties, and a symbology summary.
package layerreport

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
	"github.com/jbadsdata/arc-hacks/internal/lyrx"
	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

// Version is the static report version stamped into the header.
const Version = "1.0"

// Reporter generates the layer metadata report. OpenSource resolves a
// layer's container path to a workspace so field schemas can be read from
// the actual data source; when nil, field sections degrade to an error note.
type Reporter struct {
	Log        *slog.Logger
	Author     string
	Now        func() time.Time
	OpenSource func(path string) (workspace.Workspace, error)
}

// Generate builds the full report over files (processed in the given order)
// and returns it along with the number of files successfully processed.
// A file that fails to open is logged and contributes nothing, not even a
// table-of-contents entry.
func (r *Reporter) Generate(files []string, sourceDir string) (string, int) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	generated := now().Format(catalog.TimestampFormat)

	var toc, body strings.Builder
	toc.WriteString("### Table of Contents \n\n")
	processed := 0

	for _, path := range files {
		doc, err := lyrx.Open(path)
		if err != nil {
			r.Log.Warn("error processing layer file", "path", path, "error", err)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			r.Log.Warn("error reading layer file stats", "path", path, "error", err)
			continue
		}

		fmt.Fprintf(&body, "### File Information:\n\n")
		fmt.Fprintf(&body, "- File Path: %s\n", path)
		fmt.Fprintf(&body, "- File Name: %s\n", filepath.Base(path))
		fmt.Fprintf(&body, "- Last Modified: %s\n", info.ModTime().Format(catalog.TimestampFormat))
		fmt.Fprintf(&body, "- File Size: %.2f KB\n\n", float64(info.Size())/1024)

		fmt.Fprintf(&toc, "- %s\n", path)

		for _, layer := range doc.Layers() {
			if !layer.HasDataSource() {
				continue
			}
			r.writeLayer(&body, &layer)
		}
		processed++
	}

	var report strings.Builder
	report.WriteString("# Layer Metadata Report\n\n")
	fmt.Fprintf(&report, "**Generated:** %s\n\n", generated)
	fmt.Fprintf(&report, "**Script Version:** %s\n\n", Version)
	fmt.Fprintf(&report, "**Author:** %s\n\n", r.Author)
	fmt.Fprintf(&report, "**Source Directory:** %s\n\n", sourceDir)
	report.WriteString("---\n\n")
	report.WriteString(toc.String())
	report.WriteString("---\n\n")
	report.WriteString(body.String())
	report.WriteString("\n---\n\n")
	report.WriteString("**End of Report**\n\n")
	fmt.Fprintf(&report, "Report completed at: %s\n", generated)

	return report.String(), processed
}

func (r *Reporter) writeLayer(body *strings.Builder, layer *lyrx.LayerDefinition) {
	source := layer.DataSource()
	fmt.Fprintf(body, "## Layer: %s\n\nSource: %s\n\n", layer.Name, source)

	if info, err := os.Stat(source); err == nil {
		body.WriteString("Data Source Metadata:\n\n")
		fmt.Fprintf(body, "- Last Modified: %s\n\n", info.ModTime().Format(catalog.TimestampFormat))
	}

	// Fields, layer properties, and symbology fail independently: an error
	// in one becomes an inline note and the next section still runs.
	if err := r.writeFields(body, layer.FeatureTable.DataConnection); err != nil {
		fmt.Fprintf(body, "Error reading fields: %s\n\n", err)
	}
	r.writeProperties(body, layer)
	r.writeSymbology(body, layer.Renderer)
}

func (r *Reporter) writeFields(body *strings.Builder, dc *lyrx.DataConnection) error {
	if r.OpenSource == nil {
		return fmt.Errorf("no data source resolver configured")
	}
	container := dc.ContainerPath()
	if container == "" {
		return fmt.Errorf("unresolvable workspace connection %q", dc.WorkspaceConnectionString)
	}

	ws, err := r.OpenSource(container)
	if err != nil {
		return err
	}
	defer ws.Close()

	desc, err := ws.Describe(dc.Dataset)
	if err != nil {
		return err
	}

	body.WriteString("### Fields:\n\n")
	for _, f := range desc.Fields {
		fmt.Fprintf(body, "- %s\n", f.Name)
		fmt.Fprintf(body, "  - Type: %s\n", f.Type)
		fmt.Fprintf(body, "  - Length: %d\n", f.Length)
		fmt.Fprintf(body, "  - Alias: %s\n", f.Alias)
		fmt.Fprintf(body, "  - Nullable: %t\n\n", f.Nullable)
	}
	return nil
}

func (r *Reporter) writeProperties(body *strings.Builder, layer *lyrx.LayerDefinition) {
	body.WriteString("### Layer Properties:\n\n")
	fmt.Fprintf(body, "- Description: %s\n", layer.Description)
	fmt.Fprintf(body, "- Visible: %t\n", layer.Visibility)
	fmt.Fprintf(body, "- Min Scale: %g\n", layer.MinScale)
	fmt.Fprintf(body, "- Max Scale: %g\n", layer.MaxScale)
	fmt.Fprintf(body, "- Transparency: %g%%\n", layer.Transparency)
	if layer.FeatureTable != nil {
		fmt.Fprintf(body, "- Definition Query: %s\n", layer.FeatureTable.DefinitionExpression)
	}
	body.WriteString("\n")
}

func (r *Reporter) writeSymbology(body *strings.Builder, renderer *lyrx.Renderer) {
	body.WriteString("### Symbology:\n\n")
	if renderer == nil {
		body.WriteString("\n")
		return
	}

	fmt.Fprintf(body, "- Renderer Type: %s\n", renderer.Type)
	if t := renderer.SymbolType(); t != "" {
		fmt.Fprintf(body, "- Symbol Type: %s\n", t)
	}
	if c := renderer.SymbolColor(); c != "" {
		fmt.Fprintf(body, "- Color: %s\n", c)
	}
	if s := renderer.SymbolSize(); s > 0 {
		fmt.Fprintf(body, "- Size: %g\n", s)
	}
	if fields := renderer.ClassificationFields(); len(fields) > 0 {
		fmt.Fprintf(body, "- Classification Field(s): %s\n", strings.Join(fields, ", "))
	}
	if len(renderer.Breaks) > 0 {
		fmt.Fprintf(body, "- Class Breaks: %d\n", len(renderer.Breaks))
	}
	if len(renderer.Groups) > 0 {
		fmt.Fprintf(body, "- Number of Groups: %d\n", len(renderer.Groups))
	}
	body.WriteString("\n")
}

// Write emits the report verbatim to the primary and admin destinations.
func Write(report, primaryPath, adminPath string) error {
	for _, path := range []string{primaryPath, adminPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", path, err)
		}
	}
	return nil
}
