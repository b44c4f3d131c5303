package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"
)

// captureOutput points flushed documents at a buffer for the duration of a test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

// inLambda fakes AWS_LAMBDA_FUNCTION_NAME for the duration of a test.
func inLambda(t *testing.T, name string) {
	t.Helper()
	prev := lambdaFunction
	lambdaFunction = func() string { return name }
	t.Cleanup(func() { lambdaFunction = prev })
}

func TestNew_AutoDimension(t *testing.T) {
	inLambda(t, "EnhanceFunction")

	r := New(Namespace)
	if r.namespace != "AiDoodleEnhancer" {
		t.Errorf("expected namespace AiDoodleEnhancer, got %s", r.namespace)
	}
	if r.dimensions["FunctionName"] != "EnhanceFunction" {
		t.Errorf("expected FunctionName dimension EnhanceFunction, got %s", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	buf := captureOutput(t)
	inLambda(t, "")

	New(Namespace).
		Dimension("Model", "gemini-1.5-flash").
		Dimension("Result", "success").
		Duration("GeminiCallMs", 1234*time.Millisecond).
		Count("EnhanceResult").
		Property("requestId", "abc-123").
		Flush()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}
	cwArr, ok := awsMap["CloudWatchMetrics"].([]any)
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]any)
	if cw["Namespace"] != "AiDoodleEnhancer" {
		t.Errorf("expected namespace AiDoodleEnhancer, got %v", cw["Namespace"])
	}

	dims := cw["Dimensions"].([]any)[0].([]any)
	if len(dims) != 2 || dims[0] != "Model" || dims[1] != "Result" {
		t.Errorf("expected sorted dimensions [Model Result], got %v", dims)
	}
	metricDefs := cw["Metrics"].([]any)
	if first := metricDefs[0].(map[string]any); first["Name"] != "EnhanceResult" {
		t.Errorf("expected metric definitions sorted by name, got %v", metricDefs)
	}

	if doc["Result"] != "success" {
		t.Errorf("expected Result=success, got %v", doc["Result"])
	}
	if doc["GeminiCallMs"] != float64(1234) {
		t.Errorf("expected GeminiCallMs=1234, got %v", doc["GeminiCallMs"])
	}
	if doc["EnhanceResult"] != float64(1) {
		t.Errorf("expected EnhanceResult=1, got %v", doc["EnhanceResult"])
	}
	if doc["requestId"] != "abc-123" {
		t.Errorf("expected requestId=abc-123, got %v", doc["requestId"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	buf := captureOutput(t)

	New("Test").Property("requestId", "x").Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no output for recorder without metrics, got: %s", buf.String())
	}
}

func TestRecorder_Chaining(t *testing.T) {
	inLambda(t, "")
	rec := New("Test").
		Dimension("Route", "/api/enhance").
		Metric("RequestLatencyMs", 100, UnitMilliseconds).
		Count("RequestCount").
		Property("status", 200)

	if rec.dimensions["Route"] != "/api/enhance" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["RequestLatencyMs"] != 100 {
		t.Error("chaining Metric failed")
	}
	if rec.values["RequestCount"] != 1 || rec.metrics["RequestCount"].Unit != UnitCount {
		t.Error("chaining Count failed")
	}
	if rec.properties["status"] != 200 {
		t.Error("chaining Property failed")
	}
}

func TestDocument_PropertyNameClash(t *testing.T) {
	inLambda(t, "")
	now := time.UnixMilli(1700000000000)
	doc := New("Test").
		Property("Result", "from-property").
		Dimension("Result", "success").
		Bytes("PayloadBytes", 2048).
		document(now)

	if doc["Result"] != "success" {
		t.Errorf("expected dimension to win over property, got %v", doc["Result"])
	}
	if doc["PayloadBytes"] != float64(2048) {
		t.Errorf("expected PayloadBytes=2048, got %v", doc["PayloadBytes"])
	}
	directive := doc["_aws"].(emfDirective)
	if directive.Timestamp != 1700000000000 {
		t.Errorf("expected timestamp 1700000000000, got %d", directive.Timestamp)
	}
	if unit := directive.CloudWatchMetrics[0].Metrics[0].Unit; unit != UnitBytes {
		t.Errorf("expected unit Bytes, got %s", unit)
	}
}
