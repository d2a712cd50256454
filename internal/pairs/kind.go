package pairs

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Kind names a pair variant on the wire.
type Kind string

const (
	KindSingleValued  Kind = "single_valued"
	KindEnsemble      Kind = "ensemble"
	KindDichotomous   Kind = "dichotomous"
	KindMulticategory Kind = "multicategory"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindSingleValued, KindEnsemble, KindDichotomous, KindMulticategory}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown pair kind %q", domain.ErrInvalid, s)
}

// IsCategorical reports whether pairs of this kind are CategoryPair values.
func (k Kind) IsCategorical() bool {
	return k == KindDichotomous || k == KindMulticategory
}
