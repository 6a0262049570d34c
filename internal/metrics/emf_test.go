package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestNew_AutoDimension(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "TestFunction")
	initOnce.Do(func() {}) // Reset once
	functionName = "TestFunction"

	r := New("TestNamespace")
	if r.namespace != "TestNamespace" {
		t.Errorf("expected namespace TestNamespace, got %s", r.namespace)
	}
	if r.dimensions["FunctionName"] != "TestFunction" {
		t.Errorf("expected FunctionName dimension TestFunction, got %s", r.dimensions["FunctionName"])
	}
}

func TestPipeline_Namespace(t *testing.T) {
	functionName = ""
	r := Pipeline()
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	functionName = "" // Clear for test isolation

	rec := New(Namespace)
	rec.Dimension("Operation", "stitch")
	rec.Metric("StitchMs", 1234.5, UnitMilliseconds)
	rec.Metric("ClipCount", 3, UnitCount)
	rec.Property("sessionId", "a1b2c3d4")
	rec.Flush()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, output)
	}

	awsDir, ok := doc["_aws"]
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	awsMap, ok := awsDir.(map[string]interface{})
	if !ok {
		t.Fatal("_aws directive is not a map")
	}

	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}

	cwMetrics, ok := awsMap["CloudWatchMetrics"]
	if !ok {
		t.Fatal("missing CloudWatchMetrics in _aws directive")
	}
	cwArr, ok := cwMetrics.([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}

	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}

	if doc["Operation"] != "stitch" {
		t.Errorf("expected Operation=stitch, got %v", doc["Operation"])
	}
	if doc["StitchMs"] != 1234.5 {
		t.Errorf("expected StitchMs=1234.5, got %v", doc["StitchMs"])
	}
	if doc["ClipCount"] != float64(3) {
		t.Errorf("expected ClipCount=3, got %v", doc["ClipCount"])
	}
	if doc["sessionId"] != "a1b2c3d4" {
		t.Errorf("expected sessionId=a1b2c3d4, got %v", doc["sessionId"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rec := New("Test")
	rec.Flush() // No metrics — should produce no output

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestRecorder_Count(t *testing.T) {
	functionName = ""
	rec := New("Test")
	rec.Count("ValidationErrors")

	if v, ok := rec.values["ValidationErrors"]; !ok || v != float64(1) {
		t.Errorf("expected ValidationErrors=1, got %v", v)
	}
	if m, ok := rec.metrics["ValidationErrors"]; !ok || m.Unit != UnitCount {
		t.Errorf("expected unit Count, got %v", m.Unit)
	}
}

func TestRecorder_Duration(t *testing.T) {
	functionName = ""
	start := time.Now().Add(-50 * time.Millisecond)
	rec := New("Test").Duration("ConvertMs", start)

	v, ok := rec.values["ConvertMs"].(float64)
	if !ok || v < 50 {
		t.Errorf("expected ConvertMs >= 50, got %v", rec.values["ConvertMs"])
	}
	if m := rec.metrics["ConvertMs"]; m.Unit != UnitMilliseconds {
		t.Errorf("expected unit Milliseconds, got %s", m.Unit)
	}
}

func TestRecorder_Chaining(t *testing.T) {
	functionName = ""
	rec := New("Test").
		Dimension("Op", "optimize").
		Metric("EncodeMs", 100, UnitMilliseconds).
		Count("Encodes").
		Property("resolution", "720p")

	if rec.dimensions["Op"] != "optimize" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["EncodeMs"] != float64(100) {
		t.Error("chaining Metric failed")
	}
	if rec.values["Encodes"] != float64(1) {
		t.Error("chaining Count failed")
	}
	if rec.properties["resolution"] != "720p" {
		t.Error("chaining Property failed")
	}
}
