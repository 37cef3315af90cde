package workspace

import "fmt"

// Mock is a test double for the Workspace interface.
type Mock struct {
	ContainerName string
	ContainerPath string

	// FeatureClasses maps a dataset scope to the feature classes listed in
	// it. The "" key holds the container-level feature classes.
	FeatureClasses  map[string][]string
	FeatureDatasets []string
	Tables          []string
	Rasters         []string

	// Descriptions maps dataset names to their descriptions.
	Descriptions map[string]*Description

	ListFeatureClassesErr  error
	ListFeatureDatasetsErr error
	ListTablesErr          error
	ListRastersErr         error
	DescribeErrs           map[string]error

	Scope  string
	Closed bool
}

var _ Workspace = (*Mock)(nil)

func (m *Mock) Name() string { return m.ContainerName }
func (m *Mock) Path() string { return m.ContainerPath }

func (m *Mock) ListFeatureClasses() ([]string, error) {
	if m.ListFeatureClassesErr != nil {
		return nil, m.ListFeatureClassesErr
	}
	return m.FeatureClasses[m.Scope], nil
}

func (m *Mock) ListFeatureDatasets() ([]string, error) {
	if m.ListFeatureDatasetsErr != nil {
		return nil, m.ListFeatureDatasetsErr
	}
	return m.FeatureDatasets, nil
}

func (m *Mock) SetDataset(name string) error {
	m.Scope = name
	return nil
}

func (m *Mock) ListTables() ([]string, error) {
	if m.ListTablesErr != nil {
		return nil, m.ListTablesErr
	}
	return m.Tables, nil
}

func (m *Mock) ListRasters() ([]string, error) {
	if m.ListRastersErr != nil {
		return nil, m.ListRastersErr
	}
	return m.Rasters, nil
}

func (m *Mock) Describe(name string) (*Description, error) {
	if m.DescribeErrs != nil {
		if err, ok := m.DescribeErrs[name]; ok {
			return nil, err
		}
	}
	if m.Descriptions != nil {
		if d, ok := m.Descriptions[name]; ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no description configured for %s", name)
}

func (m *Mock) Close() error {
	m.Closed = true
	return nil
}
