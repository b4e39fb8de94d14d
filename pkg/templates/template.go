// Package templates holds the CloudFormation template document model and
// the YAML file writer for exported resources.
package templates

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kiwicloudninja/arnexport/internal/logs"
)

// FormatVersion is the CloudFormation template format version marker.
const FormatVersion = "2010-09-09"

// Resource is one template resource: a canonical type and its properties.
// Property values are either literals copied from the live resource or
// !Ref strings pointing at sibling resources.
type Resource struct {
	Type       string         `yaml:"Type"`
	Properties map[string]any `yaml:"Properties"`
}

// Document is a CloudFormation template.
type Document struct {
	AWSTemplateFormatVersion string              `yaml:"AWSTemplateFormatVersion"`
	Description              string              `yaml:"Description"`
	Resources                map[string]Resource `yaml:"Resources"`
}

// rawDocument carries the unexpanded API response in the same envelope.
type rawDocument struct {
	AWSTemplateFormatVersion string         `yaml:"AWSTemplateFormatVersion"`
	Description              string         `yaml:"Description"`
	Resources                map[string]any `yaml:"Resources"`
}

// NewDocument builds a template document around the given resources.
func NewDocument(description string, resources map[string]Resource) *Document {
	return &Document{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              description,
		Resources:                resources,
	}
}

// Write serializes the document to <dir>/<base>.yml, creating the
// directory if needed, and returns the written path.
func Write(dir, base string, doc *Document) (string, error) {
	return writeYaml(dir, base+".yml", doc)
}

// WriteRaw serializes the unexpanded fetched document to
// <dir>/<base>_raw.yml in the template envelope.
func WriteRaw(dir, base, description string, raw map[string]any) (string, error) {
	doc := &rawDocument{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              description,
		Resources:                raw,
	}
	return writeYaml(dir, base+"_raw.yml", doc)
}

func writeYaml(dir, name string, doc any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating templates directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	logs.ConsoleLogger().Info("Output written", "path", path)
	return path, nil
}
