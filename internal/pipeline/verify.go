package pipeline

import (
	"context"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/engine"
	"github.com/couchcryptid/storm-data-verify/internal/ingest"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

// Verified is the result of verifying one pair batch.
type Verified struct {
	BatchID  string
	Kind     pairs.Kind
	Metadata domain.Metadata
	Outputs  []output.Output
}

// BatchVerifier implements Verifier by decoding the message as a pair
// batch and scoring it with an engine.
type BatchVerifier struct {
	engine *engine.Engine
}

// NewVerifier creates a BatchVerifier for the given engine.
func NewVerifier(e *engine.Engine) *BatchVerifier {
	return &BatchVerifier{engine: e}
}

func (v *BatchVerifier) Verify(ctx context.Context, raw ingest.RawMessage) (Verified, error) {
	if err := ctx.Err(); err != nil {
		return Verified{}, err
	}
	batch, err := ingest.DecodeBatch(raw.Value)
	if err != nil {
		return Verified{}, err
	}
	outs, err := batch.Evaluate(v.engine)
	if err != nil {
		return Verified{}, err
	}
	return Verified{
		BatchID:  batch.ID,
		Kind:     batch.Kind,
		Metadata: batch.Metadata,
		Outputs:  outs,
	}, nil
}
