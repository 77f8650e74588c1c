package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestJSONFormatter_FormatResult(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(nil).FormatResult(&buf, sampleResult()); err != nil {
		t.Fatalf("FormatResult failed: %v", err)
	}

	var got ResultView
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if got.RunID != "run-1" || got.Means[1].Mean[2] != 10 || got.Means[1].Points != 3 {
		t.Errorf("unexpected view: %+v", got)
	}
	if strings.Contains(buf.String(), "assignment") {
		t.Error("narrow JSON should not include the assignment")
	}
	if !strings.Contains(buf.String(), "\n  \"run_id\"") {
		t.Errorf("expected two space indentation, got:\n%s", buf.String())
	}
}

func TestJSONFormatter_FormatResult_Wide(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&Options{Wide: true}).FormatResult(&buf, sampleResult()); err != nil {
		t.Fatalf("FormatResult failed: %v", err)
	}

	var got ResultView
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got.Assignment) != 5 || got.Partitions[1].End != 5 {
		t.Errorf("wide JSON missing detail: %+v", got)
	}
}

func TestJSONFormatter_FormatRuns(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(nil).FormatRuns(&buf, sampleRuns()); err != nil {
		t.Fatalf("FormatRuns failed: %v", err)
	}

	var got []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	data, ok := got[0]["data"].(map[string]interface{})
	if !ok || data["iterations"] != float64(4) {
		t.Errorf("unexpected data for first run: %v", got[0])
	}
	if got[1]["status"] != "failed" || got[1]["error"] != "interrupted" {
		t.Errorf("unexpected second run: %v", got[1])
	}
}

func TestYAMLFormatter_FormatResult(t *testing.T) {
	var buf bytes.Buffer
	if err := NewYAMLFormatter(nil).FormatResult(&buf, sampleResult()); err != nil {
		t.Fatalf("FormatResult failed: %v", err)
	}

	var got ResultView
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if got.Iterations != 2 || !got.Converged || got.Means[0].Mean[0] != 1.5 {
		t.Errorf("unexpected view: %+v", got)
	}
	if !strings.Contains(buf.String(), "flips: [3, 0]") {
		t.Errorf("expected flow style flips, got:\n%s", buf.String())
	}
}

func TestYAMLFormatter_FormatRuns(t *testing.T) {
	var buf bytes.Buffer
	if err := NewYAMLFormatter(nil).FormatRuns(&buf, sampleRuns()); err != nil {
		t.Fatalf("FormatRuns failed: %v", err)
	}

	var got []map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(got) != 2 || got[0]["name"] != "threads=1" || got[1]["status"] != "failed" {
		t.Errorf("unexpected runs: %v", got)
	}
}

func TestStructured_Format(t *testing.T) {
	data := map[string]interface{}{"version": "1.0.0"}

	var jbuf, ybuf bytes.Buffer
	if err := NewJSONFormatter(nil).Format(&jbuf, data); err != nil {
		t.Fatal(err)
	}
	if err := NewYAMLFormatter(nil).Format(&ybuf, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(jbuf.String(), `"version": "1.0.0"`) {
		t.Errorf("unexpected JSON: %s", jbuf.String())
	}
	if ybuf.String() != "version: 1.0.0\n" {
		t.Errorf("unexpected YAML: %q", ybuf.String())
	}
}
