package format

import (
	"strings"
	"testing"
)

func TestDataFormatSet(t *testing.T) {
	var df DataFormat
	if err := df.Set("yaml"); err != nil {
		t.Fatalf("failed to set yaml: %v", err)
	}
	if df != FORMAT_YAML {
		t.Errorf("expected yaml, got %s", df)
	}
	if err := df.Set("xml"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestMarshal(t *testing.T) {
	data := map[string]string{"name": "rack-a"}

	b, err := Marshal(data, FORMAT_JSON)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	if !strings.Contains(string(b), `"name": "rack-a"`) {
		t.Errorf("unexpected JSON output: %s", b)
	}

	b, err = Marshal(data, FORMAT_YAML)
	if err != nil {
		t.Fatalf("failed to marshal YAML: %v", err)
	}
	if !strings.Contains(string(b), "name: rack-a") {
		t.Errorf("unexpected YAML output: %s", b)
	}

	if _, err := Marshal(data, DataFormat("xml")); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
