package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"network-ai-monitor/internal/model"

	"gopkg.in/yaml.v3"
)

// ClassificationFile is a standalone file holding class rules and their
// threshold profiles, so they can be shared between hosts.
type ClassificationFile struct {
	DefaultClass string                            `json:"default_class" yaml:"default_class"`
	Rules        []ClassRule                       `json:"rules" yaml:"rules"`
	Thresholds   map[string]model.ThresholdProfile `json:"thresholds" yaml:"thresholds"`
}

// LoadClassificationFromJSON loads class rules from a JSON file
func LoadClassificationFromJSON(filename string) (*ClassificationFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %v", err)
	}

	var file ClassificationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %v", err)
	}

	return &file, nil
}

// LoadClassificationFromYAML loads class rules from a YAML file
func LoadClassificationFromYAML(filename string) (*ClassificationFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %v", err)
	}

	var file ClassificationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules file: %v", err)
	}

	return &file, nil
}

// LoadClassification detects the file format from its extension
func LoadClassification(filename string) (*ClassificationFile, error) {
	if len(filename) == 0 {
		return nil, fmt.Errorf("rules file path is empty")
	}

	switch {
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		return LoadClassificationFromYAML(filename)
	case strings.HasSuffix(filename, ".json"):
		return LoadClassificationFromJSON(filename)
	}

	// Default: try YAML first, fallback to JSON
	if file, err := LoadClassificationFromYAML(filename); err == nil {
		return file, nil
	}
	return LoadClassificationFromJSON(filename)
}
