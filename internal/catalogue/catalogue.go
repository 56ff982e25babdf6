// Package catalogue holds the static, ordered disease label catalogue. Label
// order matches classifier output position and must never be reordered
// without retraining the model.
package catalogue

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/diseases.yaml
var catalogueFiles embed.FS

// Severity describes how urgent treatment of a disease is.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// validSeverities is used when validating a loaded catalogue.
var validSeverities = map[Severity]bool{
	SeverityNone:   true,
	SeverityLow:    true,
	SeverityMedium: true,
	SeverityHigh:   true,
}

// DiseaseLabel is one entry of the catalogue. Immutable after load.
type DiseaseLabel struct {
	ID             int               `yaml:"id"`
	Name           string            `yaml:"name"`
	LocalizedNames map[string]string `yaml:"localized_names"`
	Severity       Severity          `yaml:"severity"`
	Treatment      map[string]string `yaml:"treatment"`
}

// Catalogue is the ordered disease label set loaded once at startup.
type Catalogue struct {
	labels []DiseaseLabel
	byName map[string]int
}

type catalogueFile struct {
	Diseases []DiseaseLabel `yaml:"diseases"`
}

// Load parses the embedded default catalogue.
func Load() (*Catalogue, error) {
	data, err := fs.ReadFile(catalogueFiles, "data/diseases.yaml")
	if err != nil {
		return nil, errors.New(err).
			Component("catalogue").
			Category(errors.CategoryLabelLoad).
			Context("source", "embedded").
			Build()
	}
	return parse(data)
}

// LoadFile parses a catalogue from an external YAML file, for custom models.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from application settings
	if err != nil {
		return nil, errors.New(err).
			Component("catalogue").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return parse(data)
}

func parse(data []byte) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.New(err).
			Component("catalogue").
			Category(errors.CategoryLabelLoad).
			Build()
	}
	if len(file.Diseases) == 0 {
		return nil, errors.Newf("catalogue contains no disease labels").
			Component("catalogue").
			Category(errors.CategoryLabelLoad).
			Build()
	}

	c := &Catalogue{
		labels: file.Diseases,
		byName: make(map[string]int, len(file.Diseases)),
	}
	for i := range c.labels {
		label := &c.labels[i]
		if label.Name == "" {
			return nil, errors.Newf("catalogue entry %d has an empty name", i).
				Component("catalogue").
				Category(errors.CategoryValidation).
				Build()
		}
		if !validSeverities[label.Severity] {
			return nil, errors.Newf("catalogue entry %q has invalid severity %q", label.Name, label.Severity).
				Component("catalogue").
				Category(errors.CategoryValidation).
				Build()
		}
		key := strings.ToLower(label.Name)
		if _, exists := c.byName[key]; exists {
			return nil, errors.Newf("catalogue contains duplicate label %q", label.Name).
				Component("catalogue").
				Category(errors.CategoryValidation).
				Build()
		}
		c.byName[key] = i
	}
	return c, nil
}

// Len returns the number of labels in the catalogue.
func (c *Catalogue) Len() int {
	return len(c.labels)
}

// Labels returns the canonical label names in classifier output order.
func (c *Catalogue) Labels() []string {
	names := make([]string, len(c.labels))
	for i := range c.labels {
		names[i] = c.labels[i].Name
	}
	return names
}

// ByIndex returns the label at classifier output position i.
func (c *Catalogue) ByIndex(i int) (DiseaseLabel, error) {
	if i < 0 || i >= len(c.labels) {
		return DiseaseLabel{}, fmt.Errorf("label index %d out of range 0..%d", i, len(c.labels)-1)
	}
	return c.labels[i], nil
}

// ByName looks up a label by its exact canonical name, case-insensitively.
func (c *Catalogue) ByName(name string) (DiseaseLabel, bool) {
	i, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return DiseaseLabel{}, false
	}
	return c.labels[i], true
}

// FindByKeyword returns the first label whose canonical name contains the
// keyword, case-insensitively. The heuristic classifier uses this so its
// results always refer to whatever catalogue is actually loaded.
func (c *Catalogue) FindByKeyword(keyword string) (DiseaseLabel, bool) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return DiseaseLabel{}, false
	}
	for i := range c.labels {
		if strings.Contains(strings.ToLower(c.labels[i].Name), kw) {
			return c.labels[i], true
		}
	}
	return DiseaseLabel{}, false
}

// LocalizedName returns the label name in the requested locale, falling back
// to the canonical name when no translation exists.
func (c *Catalogue) LocalizedName(label *DiseaseLabel, locale string) string {
	if name, ok := label.LocalizedNames[locale]; ok && name != "" {
		return name
	}
	return label.Name
}

// TreatmentText returns the treatment guidance in the requested locale,
// falling back to the default locale, then to empty.
func (c *Catalogue) TreatmentText(label *DiseaseLabel, locale string) string {
	if text, ok := label.Treatment[locale]; ok && text != "" {
		return text
	}
	if text, ok := label.Treatment[conf.DefaultFallbackLocale]; ok {
		return text
	}
	return ""
}
