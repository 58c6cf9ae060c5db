package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClassificationFormats(t *testing.T) {
	yamlBody := `
default_class: other
rules:
  - class: vpn
    contains: [tun, wg]
thresholds:
  vpn:
    inbound_mbps: 3
    outbound_mbps: 1.5
`
	jsonBody := `{"default_class":"other","rules":[{"class":"vpn","contains":["tun","wg"]}],
"thresholds":{"vpn":{"inbound_mbps":3,"outbound_mbps":1.5}}}`

	tests := []struct {
		name string
		file string
		body string
	}{
		{"yaml", "classes.yaml", yamlBody},
		{"yml", "classes.yml", yamlBody},
		{"json", "classes.json", jsonBody},
		{"no extension json", "classes", jsonBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := LoadClassification(writeFile(t, tt.file, tt.body))
			if err != nil {
				t.Fatalf("LoadClassification: %v", err)
			}
			if len(file.Rules) != 1 || file.Rules[0].Class != "vpn" || len(file.Rules[0].Contains) != 2 {
				t.Errorf("rules = %+v", file.Rules)
			}
			if p := file.Thresholds["vpn"]; p.InboundLimitMbps != 3 || p.OutboundLimitMbps != 1.5 {
				t.Errorf("thresholds = %+v", file.Thresholds)
			}
		})
	}
}

func TestLoadClassificationErrors(t *testing.T) {
	if _, err := LoadClassification(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := LoadClassification(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadClassification(writeFile(t, "bad.json", "{not json")); err == nil {
		t.Error("expected error for bad json")
	}
}
