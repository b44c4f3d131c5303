// Package metrics provides a lightweight AWS CloudWatch Embedded Metrics Format (EMF)
// recorder. EMF metrics are written as structured JSON lines to stdout, where
// CloudWatch Logs extracts them without any API calls on the request path.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Namespace is the CloudWatch namespace all enhancer metrics are published under.
const Namespace = "AiDoodleEnhancer"

// CloudWatch units used by the enhancer.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

// emfDirective is the _aws metadata block required by EMF.
type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder collects one EMF document. Build it with the chained setters and
// call Flush once; it is not safe for concurrent use.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]float64
	properties map[string]any
}

var (
	lambdaFunction = sync.OnceValue(func() string { return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") })

	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

// SetOutput redirects flushed EMF documents to w. The local server passes
// io.Discard unless metrics were requested.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// New starts a recorder for namespace. Inside Lambda the FunctionName
// dimension is added automatically.
func New(namespace string) *Recorder {
	r := &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]float64),
		properties: make(map[string]any),
	}
	if fn := lambdaFunction(); fn != "" {
		r.dimensions["FunctionName"] = fn
	}
	return r
}

// Dimension sets a dimension. Keep values low-cardinality: every distinct
// combination becomes its own CloudWatch metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric sets name to value in the given unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count records a single occurrence of name.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Duration records d in milliseconds.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Bytes records a size in bytes.
func (r *Recorder) Bytes(name string, n int) *Recorder {
	return r.Metric(name, float64(n), UnitBytes)
}

// Property attaches a field that Logs Insights can query but that is not a metric.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF document as one JSON line to the configured output.
// A recorder without metrics writes nothing. Do not reuse r afterwards.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	data, err := json.Marshal(r.document(time.Now()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to marshal metrics: %v\n", err)
		return
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintln(output, string(data))
}

// document flattens properties, dimensions and values into one object and
// adds the _aws directive. Dimensions and values win over a property with
// the same name.
func (r *Recorder) document(now time.Time) map[string]any {
	doc := make(map[string]any, len(r.properties)+len(r.dimensions)+len(r.values)+1)
	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}

	names := sortedKeys(r.metrics)
	defs := make([]metricDef, len(names))
	for i, name := range names {
		defs[i] = r.metrics[name]
	}

	doc["_aws"] = emfDirective{
		Timestamp: now.UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{sortedKeys(r.dimensions)},
			Metrics:    defs,
		}},
	}
	return doc
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
