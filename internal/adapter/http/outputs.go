package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/ingest"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pipeline"
)

type outputsResponse struct {
	Datasets []datasetJSON `json:"datasets"`
}

type datasetJSON struct {
	Metadata              domain.Metadata       `json:"metadata"`
	Size                  int                   `json:"size"`
	HasQuantileThresholds bool                  `json:"has_quantile_thresholds"`
	Outputs               []ingest.OutputRecord `json:"outputs"`
}

// outputFilter narrows a dataset to the outputs a query asks for. Zero
// fields match everything.
type outputFilter struct {
	feature   domain.FeatureKey
	metric    string
	lead      time.Duration
	hasLead   bool
	threshold domain.Threshold
	hasThresh bool
}

func parseOutputFilter(q url.Values) (outputFilter, error) {
	f := outputFilter{
		feature: domain.FeatureKey(q.Get("feature")),
		metric:  q.Get("metric"),
	}
	if s := q.Get("lead"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return outputFilter{}, fmt.Errorf("invalid lead %q: %w", s, err)
		}
		f.lead, f.hasLead = d, true
	}
	if s := q.Get("threshold"); s != "" {
		th, err := domain.ParseThreshold(s)
		if err != nil {
			return outputFilter{}, fmt.Errorf("invalid threshold %q: %w", s, err)
		}
		f.threshold, f.hasThresh = th, true
	}
	return f, nil
}

func (f outputFilter) apply(mm output.MultiMap) output.MultiMap {
	if f.metric != "" {
		mm = mm.SliceByMetric(f.metric)
	}
	if f.hasLead {
		mm = mm.SliceByLead(f.lead)
	}
	if f.hasThresh {
		mm = mm.SliceByThreshold(f.threshold)
	}
	return mm
}

func handleOutputs(source OutputSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseOutputFilter(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		resp := outputsResponse{Datasets: []datasetJSON{}}
		for _, ds := range source.Snapshot() {
			if filter.feature != "" && ds.Metadata.Feature != filter.feature {
				continue
			}
			mm := filter.apply(ds.Outputs)
			if mm.Len() == 0 {
				continue
			}
			resp.Datasets = append(resp.Datasets, datasetView(ds.Metadata, mm))
		}
		logger.Debug("outputs query", "query", r.URL.RawQuery, "datasets", len(resp.Datasets))
		writeJSON(w, http.StatusOK, resp)
	}
}

// datasetView lists outputs by metric, then by window and threshold.
func datasetView(meta domain.Metadata, mm output.MultiMap) datasetJSON {
	view := datasetJSON{
		Metadata:              meta,
		Size:                  mm.Len(),
		HasQuantileThresholds: mm.HasQuantileThresholds(),
		Outputs:               make([]ingest.OutputRecord, 0, mm.Len()),
	}
	for _, mk := range mm.Metrics() {
		m, _ := mm.Get(mk)
		for _, k := range m.SortedKeys() {
			o, _ := m.Get(k)
			rec := ingest.NewOutputRecord("", o)
			rec.ProcessedAt = time.Time{}
			view.Outputs = append(view.Outputs, rec)
		}
	}
	return view
}

var _ OutputSource = (*pipeline.Results)(nil)
