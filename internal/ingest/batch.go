package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

// ErrDecode marks a message that is not a well formed pair batch.
var ErrDecode = errors.New("decode pair batch")

// PairBatch is one decoded source message: the pairs of one dataset at one
// time window, and the thresholds to verify them at.
type PairBatch struct {
	ID               string
	Kind             pairs.Kind
	Metadata         domain.Metadata
	BaselineMetadata *domain.Metadata
	Window           output.TimeWindow
	Thresholds       []domain.Threshold
	Climatology      pairs.Climatology

	singleValued []pairs.SingleValuedPair
	ensemble     []pairs.EnsemblePair
	category     []pairs.CategoryPair

	baselineSingleValued []pairs.SingleValuedPair
	baselineEnsemble     []pairs.EnsemblePair
	baselineCategory     []pairs.CategoryPair
}

// batchJSON is the envelope common to every kind. Main and baseline are
// decoded once the kind is known.
type batchJSON struct {
	ID               string            `json:"id"`
	Kind             string            `json:"kind"`
	Metadata         domain.Metadata   `json:"metadata"`
	BaselineMetadata *domain.Metadata  `json:"baseline_metadata,omitempty"`
	Window           WindowJSON        `json:"window"`
	Thresholds       []string          `json:"thresholds,omitempty"`
	Climatology      []ClimatologyJSON `json:"climatology,omitempty"`
	Main             json.RawMessage   `json:"main"`
	Baseline         json.RawMessage   `json:"baseline,omitempty"`
}

// WindowJSON is the wire form of a TimeWindow. Lead is shorthand for equal
// earliest and latest leads. Durations use time.ParseDuration syntax.
type WindowJSON struct {
	Earliest     time.Time `json:"earliest,omitzero"`
	Latest       time.Time `json:"latest,omitzero"`
	Lead         string    `json:"lead,omitempty"`
	EarliestLead string    `json:"earliest_lead,omitempty"`
	LatestLead   string    `json:"latest_lead,omitempty"`
}

// ClimatologyJSON holds the climatology of one feature.
type ClimatologyJSON struct {
	Feature domain.FeatureKey `json:"feature"`
	Values  []Float           `json:"values"`
}

type singleValuedJSON struct {
	Observed  Float `json:"observed"`
	Predicted Float `json:"predicted"`
}

type ensembleJSON struct {
	Observed Float   `json:"observed"`
	Members  []Float `json:"members"`
}

type dichotomousJSON struct {
	Observed  bool `json:"observed"`
	Predicted bool `json:"predicted"`
}

type multicategoryJSON struct {
	Observed  []bool `json:"observed"`
	Predicted []bool `json:"predicted"`
}

// PeekKind reads the kind of a raw batch without decoding the rest.
func PeekKind(data []byte) (pairs.Kind, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: invalid json", ErrDecode)
	}
	kind := gjson.GetBytes(data, "kind")
	if !kind.Exists() {
		return "", fmt.Errorf("%w: missing kind", ErrDecode)
	}
	k, err := pairs.ParseKind(kind.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return k, nil
}

// DecodeBatch parses a pair batch. Shape errors wrap ErrDecode; pair
// validation happens later, when the batch is built into a collection.
func DecodeBatch(data []byte) (PairBatch, error) {
	kind, err := PeekKind(data)
	if err != nil {
		return PairBatch{}, err
	}

	var env batchJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return PairBatch{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Main == nil {
		return PairBatch{}, fmt.Errorf("%w: batch %q has no main pairs", ErrDecode, env.ID)
	}

	window, err := env.Window.TimeWindow()
	if err != nil {
		return PairBatch{}, fmt.Errorf("%w: window: %w", ErrDecode, err)
	}
	thresholds := make([]domain.Threshold, 0, len(env.Thresholds))
	for _, s := range env.Thresholds {
		th, err := domain.ParseThreshold(s)
		if err != nil {
			return PairBatch{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		thresholds = append(thresholds, th)
	}
	clim := pairs.NewClimatologyBuilder()
	for _, c := range env.Climatology {
		clim.Add(c.Feature, toFloats(c.Values)...)
	}

	b := PairBatch{
		ID:               env.ID,
		Kind:             kind,
		Metadata:         env.Metadata,
		BaselineMetadata: env.BaselineMetadata,
		Window:           window,
		Thresholds:       thresholds,
		Climatology:      clim.Build(),
	}
	if err := b.decodePairs(env.Main, env.Baseline); err != nil {
		return PairBatch{}, fmt.Errorf("%w: batch %q: %w", ErrDecode, env.ID, err)
	}
	return b, nil
}

func (b *PairBatch) decodePairs(main, baseline json.RawMessage) error {
	var err error
	switch b.Kind {
	case pairs.KindSingleValued:
		if b.singleValued, err = decodeList(main, singleValuedPair); err != nil {
			return err
		}
		b.baselineSingleValued, err = decodeList(baseline, singleValuedPair)
	case pairs.KindEnsemble:
		if b.ensemble, err = decodeList(main, ensemblePair); err != nil {
			return err
		}
		b.baselineEnsemble, err = decodeList(baseline, ensemblePair)
	case pairs.KindDichotomous:
		if b.category, err = decodeList(main, dichotomousPair); err != nil {
			return err
		}
		b.baselineCategory, err = decodeList(baseline, dichotomousPair)
	case pairs.KindMulticategory:
		if b.category, err = decodeList(main, multicategoryPair); err != nil {
			return err
		}
		b.baselineCategory, err = decodeList(baseline, multicategoryPair)
	}
	return err
}

// decodeList decodes a JSON array with convert applied to each element. A
// missing or null array decodes as nil.
func decodeList[W any, P pairs.Pair](data json.RawMessage, convert func(W) (P, error)) ([]P, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var wire []W
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	out := make([]P, 0, len(wire))
	for i, w := range wire {
		p, err := convert(w)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func singleValuedPair(w singleValuedJSON) (pairs.SingleValuedPair, error) {
	return pairs.SingleValuedPair{Observed: float64(w.Observed), Predicted: float64(w.Predicted)}, nil
}

func ensemblePair(w ensembleJSON) (pairs.EnsemblePair, error) {
	return pairs.NewEnsemblePair(float64(w.Observed), toFloats(w.Members)...), nil
}

func dichotomousPair(w dichotomousJSON) (pairs.CategoryPair, error) {
	return pairs.NewDichotomousPair(w.Observed, w.Predicted), nil
}

func multicategoryPair(w multicategoryJSON) (pairs.CategoryPair, error) {
	return pairs.NewCategoryPair(w.Observed, w.Predicted)
}

// TimeWindow converts the wire form.
func (w WindowJSON) TimeWindow() (output.TimeWindow, error) {
	earliest, latest := w.EarliestLead, w.LatestLead
	if w.Lead != "" {
		if earliest != "" || latest != "" {
			return output.TimeWindow{}, errors.New("lead cannot be combined with earliest_lead or latest_lead")
		}
		earliest, latest = w.Lead, w.Lead
	}
	el, err := parseLead(earliest)
	if err != nil {
		return output.TimeWindow{}, err
	}
	ll, err := parseLead(latest)
	if err != nil {
		return output.TimeWindow{}, err
	}
	return output.NewTimeWindow(w.Earliest, w.Latest, el, ll)
}

func parseLead(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("lead %q: %w", s, err)
	}
	return d, nil
}

// WindowToJSON returns the wire form of w.
func WindowToJSON(w output.TimeWindow) WindowJSON {
	if w.IsLead() {
		return WindowJSON{Lead: w.Lead().String()}
	}
	return WindowJSON{
		Earliest:     w.Earliest(),
		Latest:       w.Latest(),
		EarliestLead: w.EarliestLead().String(),
		LatestLead:   w.LatestLead().String(),
	}
}
