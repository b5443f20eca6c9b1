package diagnosis

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// UnknownSeverity is reported for conditions missing from the severity table.
const UnknownSeverity = "Unknown"

// Catalog resolves raw classifier labels to display names and severity tiers.
// It is immutable once constructed.
type Catalog struct {
	names      map[string]string
	severities map[string]string
}

type catalogFile struct {
	Names      map[string]string `yaml:"names"`
	Severities map[string]string `yaml:"severities"`
}

// NewCatalog copies names (raw label to display name) and severities
// (display name to severity) into a new Catalog.
func NewCatalog(names, severities map[string]string) *Catalog {
	c := &Catalog{
		names:      make(map[string]string, len(names)),
		severities: make(map[string]string, len(severities)),
	}
	maps.Copy(c.names, names)
	maps.Copy(c.severities, severities)
	return c
}

// LoadCatalog reads a YAML catalog with top-level names and severities maps.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Names, f.Severities), nil
}

// Name returns the display name for raw, or "Unknown Disease <raw>".
func (c *Catalog) Name(raw string) string {
	if name, ok := c.names[raw]; ok {
		return name
	}
	return "Unknown Disease " + raw
}

// Severity returns the severity tier for raw, or UnknownSeverity.
func (c *Catalog) Severity(raw string) string {
	if sev, ok := c.severities[c.Name(raw)]; ok {
		return sev
	}
	return UnknownSeverity
}

// Len returns the number of named conditions.
func (c *Catalog) Len() int {
	return len(c.names)
}
