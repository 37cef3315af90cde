// Package lyrx parses ArcGIS Pro layer files (.lyrx), which are CIM layer
// documents serialized as JSON. Only the slices needed for the metadata
// report are modeled; unknown renderer and symbol fields are ignored.
package lyrx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is a CIM layer document: a list of layer URIs plus the
// definitions they point at.
type Document struct {
	Type             string            `json:"type"`
	Version          string            `json:"version"`
	LayerURIs        []string          `json:"layers"`
	LayerDefinitions []LayerDefinition `json:"layerDefinitions"`
}

// LayerDefinition is one layer inside the document.
type LayerDefinition struct {
	Type         string        `json:"type"`
	Name         string        `json:"name"`
	URI          string        `json:"uRI"`
	Visibility   bool          `json:"visibility"`
	MinScale     float64       `json:"minScale"`
	MaxScale     float64       `json:"maxScale"`
	Transparency float64       `json:"transparency"`
	Description  string        `json:"description"`
	FeatureTable *FeatureTable `json:"featureTable"`
	Renderer     *Renderer     `json:"renderer"`
}

// FeatureTable binds a layer to its data source.
type FeatureTable struct {
	Type                 string          `json:"type"`
	DataConnection       *DataConnection `json:"dataConnection"`
	DefinitionExpression string          `json:"definitionExpression"`
}

// DataConnection locates the dataset a layer draws.
type DataConnection struct {
	Type                      string `json:"type"`
	WorkspaceConnectionString string `json:"workspaceConnectionString"`
	WorkspaceFactory          string `json:"workspaceFactory"`
	Dataset                   string `json:"dataset"`
	DatasetType               string `json:"datasetType"`
}

// Renderer is a permissive union of the CIM renderer shapes: a simple
// renderer carries a symbol reference, a unique-value renderer carries
// fields and groups, a class-breaks renderer carries a field and breaks.
type Renderer struct {
	Type   string           `json:"type"`
	Symbol *SymbolReference `json:"symbol"`
	Field  string           `json:"field"`
	Fields []string         `json:"fields"`
	Breaks []ClassBreak     `json:"breaks"`
	Groups []ValueGroup     `json:"groups"`
}

// SymbolReference wraps the actual symbol.
type SymbolReference struct {
	Type   string  `json:"type"`
	Symbol *Symbol `json:"symbol"`
}

// Symbol is a CIM multi-layer symbol.
type Symbol struct {
	Type         string        `json:"type"`
	SymbolLayers []SymbolLayer `json:"symbolLayers"`
}

// SymbolLayer is one stroke/fill/marker layer of a symbol.
type SymbolLayer struct {
	Type  string  `json:"type"`
	Size  float64 `json:"size"`
	Width float64 `json:"width"`
	Color *Color  `json:"color"`
}

// Color is a CIM color; Values holds the channel values in the color
// space's own order (RGB colors: R, G, B, alpha).
type Color struct {
	Type   string    `json:"type"`
	Values []float64 `json:"values"`
}

// ClassBreak is one bin of a class-breaks renderer.
type ClassBreak struct {
	UpperBound float64 `json:"upperBound"`
	Label      string  `json:"label"`
}

// ValueGroup is one heading group of a unique-value renderer.
type ValueGroup struct {
	Heading string `json:"heading"`
}

// Open reads and parses a layer file.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layer file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing layer file %s: %w", path, err)
	}
	if doc.Type != "" && doc.Type != "CIMLayerDocument" {
		return nil, fmt.Errorf("%s: unexpected document type %q", path, doc.Type)
	}
	return &doc, nil
}

// Layers returns the layer definitions in document order: definitions are
// resolved through the document's layer URI list first, and any definitions
// not referenced there follow in their serialized order.
func (d *Document) Layers() []LayerDefinition {
	if len(d.LayerURIs) == 0 {
		return d.LayerDefinitions
	}

	byURI := make(map[string]int, len(d.LayerDefinitions))
	for i, def := range d.LayerDefinitions {
		byURI[def.URI] = i
	}

	var layers []LayerDefinition
	taken := make(map[int]bool)
	for _, uri := range d.LayerURIs {
		if i, ok := byURI[uri]; ok && !taken[i] {
			layers = append(layers, d.LayerDefinitions[i])
			taken[i] = true
		}
	}
	for i, def := range d.LayerDefinitions {
		if !taken[i] {
			layers = append(layers, def)
		}
	}
	return layers
}

// HasDataSource reports whether the layer is bound to a dataset.
func (l *LayerDefinition) HasDataSource() bool {
	return l.FeatureTable != nil && l.FeatureTable.DataConnection != nil
}

// DataSource renders the layer's source as "container/dataset", or "" when
// the layer has none.
func (l *LayerDefinition) DataSource() string {
	if !l.HasDataSource() {
		return ""
	}
	dc := l.FeatureTable.DataConnection
	container := dc.ContainerPath()
	if container == "" {
		return dc.Dataset
	}
	return filepath.Join(container, dc.Dataset)
}

// ContainerPath extracts the container path from the workspace connection
// string. Connection strings are semicolon-separated KEY=VALUE pairs; the
// DATABASE key carries the path for file-based workspaces.
func (dc *DataConnection) ContainerPath() string {
	for _, part := range strings.Split(dc.WorkspaceConnectionString, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "DATABASE") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// SymbolType returns the symbol's CIM type for simple renderers, or "".
func (r *Renderer) SymbolType() string {
	if r.Symbol == nil || r.Symbol.Symbol == nil {
		return ""
	}
	return r.Symbol.Symbol.Type
}

// SymbolColor renders the first colored symbol layer as "RGB(r, g, b)".
func (r *Renderer) SymbolColor() string {
	if r.Symbol == nil || r.Symbol.Symbol == nil {
		return ""
	}
	for _, sl := range r.Symbol.Symbol.SymbolLayers {
		if sl.Color != nil && len(sl.Color.Values) >= 3 {
			v := sl.Color.Values
			return fmt.Sprintf("RGB(%g, %g, %g)", v[0], v[1], v[2])
		}
	}
	return ""
}

// SymbolSize returns the first positive size or stroke width found in the
// symbol's layers, or 0.
func (r *Renderer) SymbolSize() float64 {
	if r.Symbol == nil || r.Symbol.Symbol == nil {
		return 0
	}
	for _, sl := range r.Symbol.Symbol.SymbolLayers {
		if sl.Size > 0 {
			return sl.Size
		}
		if sl.Width > 0 {
			return sl.Width
		}
	}
	return 0
}

// ClassificationFields returns the renderer's classification fields,
// whichever of the singular or plural CIM properties is present.
func (r *Renderer) ClassificationFields() []string {
	if len(r.Fields) > 0 {
		return r.Fields
	}
	if r.Field != "" {
		return []string{r.Field}
	}
	return nil
}
