package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/output"
)

// Output record types.
const (
	TypeScalar     = "scalar"
	TypeVector     = "vector"
	TypeMatrix     = "matrix"
	TypeMultiScore = "multi_score"
)

// OutputRecord is the wire form of one output on the sink topic.
type OutputRecord struct {
	BatchID     string           `json:"batch_id,omitempty"`
	Metric      string           `json:"metric"`
	Component   string           `json:"component"`
	Input       domain.Metadata  `json:"input"`
	SampleSize  int              `json:"sample_size"`
	Window      WindowJSON       `json:"window"`
	Threshold   string           `json:"threshold"`
	Type        string           `json:"type"`
	Value       *Float           `json:"value,omitempty"` // null when not finite
	Values      []Float          `json:"values,omitempty"`
	Rows        int              `json:"rows,omitempty"`
	Cols        int              `json:"cols,omitempty"`
	Scores      map[string]Float `json:"scores,omitempty"`
	ProcessedAt time.Time        `json:"processed_at,omitzero"`
}

// NewOutputRecord converts an output to its wire form, stamped with the
// current time.
func NewOutputRecord(batchID string, o output.Output) OutputRecord {
	m := o.Metadata()
	r := OutputRecord{
		BatchID:     batchID,
		Metric:      m.Metric,
		Component:   string(m.Component),
		Input:       m.Input,
		SampleSize:  m.SampleSize,
		Window:      WindowToJSON(m.Window),
		Threshold:   m.Threshold.String(),
		ProcessedAt: clock.Now().UTC(),
	}
	switch v := o.(type) {
	case output.ScalarOutput:
		f := Float(v.Value())
		r.Type, r.Value = TypeScalar, &f
	case output.VectorOutput:
		r.Type, r.Values = TypeVector, fromFloats(v.Values().Values())
	case output.MatrixOutput:
		r.Type, r.Values = TypeMatrix, fromFloats(v.Data())
		r.Rows, r.Cols = v.Dims()
	case output.MultiScoreOutput:
		r.Type = TypeMultiScore
		r.Scores = make(map[string]Float)
		for name, s := range v.Scores() {
			r.Scores[name] = Float(s)
		}
	}
	return r
}

// Output converts the record back to an output.
func (r OutputRecord) Output() (output.Output, error) {
	window, err := r.Window.TimeWindow()
	if err != nil {
		return nil, err
	}
	th, err := domain.ParseThreshold(r.Threshold)
	if err != nil {
		return nil, err
	}
	meta := output.Metadata{
		Input:      r.Input,
		Metric:     r.Metric,
		Component:  output.Component(r.Component),
		SampleSize: r.SampleSize,
		Window:     window,
		Threshold:  th,
	}
	switch r.Type {
	case TypeScalar:
		v := math.NaN()
		if r.Value != nil {
			v = float64(*r.Value)
		}
		return output.NewScalarOutput(v, meta), nil
	case TypeVector:
		return output.NewVectorOutput(toFloats(r.Values), meta), nil
	case TypeMatrix:
		return output.NewMatrixOutput(r.Rows, r.Cols, toFloats(r.Values), meta)
	case TypeMultiScore:
		scores := make(map[string]float64, len(r.Scores))
		for name, s := range r.Scores {
			scores[name] = float64(s)
		}
		return output.NewMultiScoreOutput(scores, meta), nil
	}
	return nil, domain.Invalidf("unknown output type %q", r.Type)
}

// SerializeOutput encodes o for the sink topic. Messages are keyed by
// feature so one feature's outputs stay on one partition.
func SerializeOutput(batchID string, o output.Output) (OutputMessage, error) {
	r := NewOutputRecord(batchID, o)
	data, err := json.Marshal(r)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize output: %w", err)
	}
	return OutputMessage{
		Key:   []byte(r.Input.Feature),
		Value: data,
		Headers: map[string]string{
			"metric":       r.Metric,
			"processed_at": r.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
