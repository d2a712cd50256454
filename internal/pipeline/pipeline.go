package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/ingest"
	"github.com/couchcryptid/storm-data-verify/internal/observability"
)

// BatchExtractor reads up to batchSize raw pair batches from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]ingest.RawMessage, error)
}

// Verifier turns one raw pair batch into metric outputs.
type Verifier interface {
	Verify(ctx context.Context, raw ingest.RawMessage) (Verified, error)
}

// BatchLoader writes serialized outputs to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, msgs []ingest.OutputMessage) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for batch timing and backoff.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline orchestrates the extract-verify-load loop and accumulates every
// output in its Results.
type Pipeline struct {
	extractor BatchExtractor
	verifier  Verifier
	loader    BatchLoader
	results   *Results
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, v Verifier, l BatchLoader, results *Results, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: e,
		verifier:  v,
		loader:    l,
		results:   results,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil if the pipeline has loaded at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not verified any batches yet")
	}
	return nil
}

// Results returns the store the pipeline writes to.
func (p *Pipeline) Results() *Results { return p.results }

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-verify-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := p.clock.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.verifyAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(p.clock.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// verifyAndLoad verifies each message, loads the outputs of the successes,
// stores them once the load succeeds, and commits offsets. Returns the
// number of loaded messages and false if the pipeline should stop.
func (p *Pipeline) verifyAndLoad(ctx context.Context, rawBatch []ingest.RawMessage, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	var outBatch []ingest.OutputMessage
	successfulRaws := make([]ingest.RawMessage, 0, len(rawBatch))
	var verified []Verified
	staged := NewResults()

	for _, raw := range rawBatch {
		v, msgs, err := p.verifyOne(ctx, raw, staged)
		if err != nil {
			reason := classify(err)
			p.logger.Warn("verify failed, skipping message",
				"error", err,
				"reason", reason,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.VerifyErrors.WithLabelValues(reason).Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		outBatch = append(outBatch, msgs...)
		successfulRaws = append(successfulRaws, raw)
		verified = append(verified, v)
	}

	if len(successfulRaws) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.OutputsProduced.Add(float64(len(outBatch)))

	for _, v := range verified {
		if err := p.results.Add(v.Metadata, v.Outputs); err != nil {
			p.logger.Error("store outputs failed", "error", err, "batch_id", v.BatchID)
		}
	}
	p.metrics.OutputsStored.Set(float64(p.results.Len()))

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(successfulRaws), true
}

// verifyOne verifies raw and serializes its outputs. The outputs must not
// collide with the store or with earlier messages of the batch, which are
// tracked in staged.
func (p *Pipeline) verifyOne(ctx context.Context, raw ingest.RawMessage, staged *Results) (Verified, []ingest.OutputMessage, error) {
	v, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return Verified{}, nil, err
	}
	if err := p.results.Check(v.Metadata, v.Outputs); err != nil {
		return Verified{}, nil, err
	}

	msgs := make([]ingest.OutputMessage, 0, len(v.Outputs))
	for _, o := range v.Outputs {
		msg, err := ingest.SerializeOutput(v.BatchID, o)
		if err != nil {
			return Verified{}, nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := staged.Add(v.Metadata, v.Outputs); err != nil {
		return Verified{}, nil, err
	}
	p.metrics.PairsVerified.WithLabelValues(string(v.Kind)).Inc()
	p.logger.Debug("batch verified", "batch_id", v.BatchID, "kind", v.Kind,
		"feature", v.Metadata.Feature, "outputs", len(v.Outputs))
	return v, msgs, nil
}

// classify maps an error to a VerifyErrors reason.
func classify(err error) string {
	switch {
	case errors.Is(err, ingest.ErrDecode):
		return observability.ReasonDecode
	case errors.Is(err, domain.ErrInsufficientData):
		return observability.ReasonInsufficientData
	default:
		return observability.ReasonInvalid
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !p.sleep(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw ingest.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
