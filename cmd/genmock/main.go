// Command genmock generates synthetic pair batch fixtures for the test
// suites. Every generated batch is run through the actual verification
// engine, so a fixture that would fail in the pipeline is never written.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -batches-out data/mock/pair_batches.json \
//	  -outputs-out data/mock/verification_outputs.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/engine"
	"github.com/couchcryptid/storm-data-verify/internal/ingest"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

var features = []domain.FeatureKey{"DRRC2", "FTSC1", "LGNN8"}

// batch mirrors the pair batch wire form read by the pipeline.
type batch struct {
	ID               string                   `json:"id"`
	Kind             pairs.Kind               `json:"kind"`
	Metadata         domain.Metadata          `json:"metadata"`
	BaselineMetadata *domain.Metadata         `json:"baseline_metadata,omitempty"`
	Window           ingest.WindowJSON        `json:"window"`
	Thresholds       []string                 `json:"thresholds,omitempty"`
	Climatology      []ingest.ClimatologyJSON `json:"climatology,omitempty"`
	Main             any                      `json:"main"`
	Baseline         any                      `json:"baseline,omitempty"`
}

type singleValued struct {
	Observed  float64 `json:"observed"`
	Predicted float64 `json:"predicted"`
}

type ensemble struct {
	Observed float64   `json:"observed"`
	Members  []float64 `json:"members"`
}

type dichotomous struct {
	Observed  bool `json:"observed"`
	Predicted bool `json:"predicted"`
}

type multicategory struct {
	Observed  []bool `json:"observed"`
	Predicted []bool `json:"predicted"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seed := flag.Uint64("seed", 20240426, "random seed")
	batchesOut := flag.String("batches-out", "", "output path for the pair batch fixture")
	outputsOut := flag.String("outputs-out", "", "optional output path for the verified output fixture")
	flag.Parse()

	if *batchesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -batches-out")
	}

	// Set a fixed clock for reproducible processed_at timestamps.
	ingest.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer ingest.SetClock(nil)

	g := generator{rng: rand.New(rand.NewPCG(*seed, *seed))}
	var batches []batch //nolint:prealloc // one per kind and feature
	for _, kind := range pairs.Kinds {
		for i, f := range features {
			batches = append(batches, g.batch(kind, f, i))
		}
	}

	eng := engine.New()
	var records []ingest.OutputRecord
	perMetric := map[string]int{}
	for _, b := range batches {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", b.ID, err)
		}
		decoded, err := ingest.DecodeBatch(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", b.ID, err)
		}
		outs, err := decoded.Evaluate(eng)
		if err != nil {
			return fmt.Errorf("verify %s: %w", b.ID, err)
		}
		for _, o := range outs {
			records = append(records, ingest.NewOutputRecord(b.ID, o))
			perMetric[o.Metadata().Metric]++
		}
	}

	if err := writeJSON(*batchesOut, batches); err != nil {
		return fmt.Errorf("writing batch fixture: %w", err)
	}
	log.Printf("wrote batch fixture: %s (%d batches)", *batchesOut, len(batches))

	if *outputsOut != "" {
		if err := writeJSON(*outputsOut, records); err != nil {
			return fmt.Errorf("writing output fixture: %w", err)
		}
		log.Printf("wrote output fixture: %s (%d outputs)", *outputsOut, len(records))
	}

	printStats(perMetric, len(records))
	return nil
}

type generator struct {
	rng *rand.Rand
}

func (g generator) uniform(lo, hi float64) float64 {
	return round(lo + g.rng.Float64()*(hi-lo))
}

func (g generator) normal(mean, sd float64) float64 {
	return round(mean + sd*g.rng.NormFloat64())
}

func round(v float64) float64 { return math.Round(v*100) / 100 }

func (g generator) batch(kind pairs.Kind, f domain.FeatureKey, i int) batch {
	b := batch{
		ID:     fmt.Sprintf("%s-%d", kind, i+1),
		Kind:   kind,
		Window: ingest.WindowJSON{Lead: fmt.Sprintf("%dh", 6*(i+1))},
	}
	switch kind {
	case pairs.KindSingleValued:
		b.Metadata = domain.Metadata{Feature: f, Variable: "streamflow", Unit: "CMS", Scenario: "operational"}
		b.Main = g.singleValued(12, 0, 2)
		b.Baseline = g.singleValued(12, 1, 3)
		base := b.Metadata
		base.Scenario = "persistence"
		b.BaselineMetadata = &base
		b.Thresholds = []string{"> 5", ">= 10"}
	case pairs.KindEnsemble:
		b.Metadata = domain.Metadata{Feature: f, Variable: "streamflow", Unit: "CMS", Scenario: "hefs"}
		ps := make([]ensemble, 10)
		for j := range ps {
			obs := g.uniform(0, 20)
			members := make([]float64, 5)
			for m := range members {
				members[m] = g.normal(obs, 3)
			}
			ps[j] = ensemble{Observed: obs, Members: members}
		}
		b.Main = ps
		clim := make([]ingest.Float, 30)
		for j := range clim {
			clim[j] = ingest.Float(g.uniform(0, 20))
		}
		b.Climatology = []ingest.ClimatologyJSON{{Feature: f, Values: clim}}
		b.Thresholds = []string{"Pr > 0.5", "> 8"}
	case pairs.KindDichotomous:
		b.Metadata = domain.Metadata{Feature: f, Variable: "flood_stage", Scenario: "operational"}
		ps := make([]dichotomous, 15)
		for j := range ps {
			obs := g.rng.Float64() < 0.4
			pred := obs
			if g.rng.Float64() >= 0.7 {
				pred = !obs
			}
			ps[j] = dichotomous{Observed: obs, Predicted: pred}
		}
		b.Main = ps
	case pairs.KindMulticategory:
		b.Metadata = domain.Metadata{Feature: f, Variable: "flood_stage", Scenario: "operational"}
		ps := make([]multicategory, 15)
		for j := range ps {
			obs := g.rng.IntN(3)
			pred := obs
			if g.rng.Float64() >= 0.6 {
				pred = g.rng.IntN(3)
			}
			ps[j] = multicategory{Observed: oneHot(obs, 3), Predicted: oneHot(pred, 3)}
		}
		b.Main = ps
	}
	return b
}

func (g generator) singleValued(n int, bias, sd float64) []singleValued {
	ps := make([]singleValued, n)
	for j := range ps {
		obs := g.uniform(0, 20)
		ps[j] = singleValued{Observed: obs, Predicted: g.normal(obs+bias, sd)}
	}
	return ps
}

func oneHot(i, n int) []bool {
	v := make([]bool, n)
	v[i] = true
	return v
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(perMetric map[string]int, total int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total outputs: %d\n", total)
	metrics := make([]string, 0, len(perMetric))
	for m := range perMetric {
		metrics = append(metrics, m)
	}
	slices.Sort(metrics)
	for _, m := range metrics {
		fmt.Printf("  %s=%d\n", m, perMetric[m])
	}
}
