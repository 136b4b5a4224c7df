package tangle

import "fmt"

// ErrInconsistency marks an internal invariant violation — e.g.
// eviction popping an id that VertexMap no longer has — treated as a
// programming bug rather than a recoverable condition.
var ErrInconsistency = fmt.Errorf("tangle: internal invariant violation")

// SnapshotInconsistencyError reports a ledger/sep-index/diff-count
// mismatch found while validating a SnapshotInfo.
type SnapshotInconsistencyError struct {
	Kind                  SnapshotKind
	SEPIndex, LedgerIndex MilestoneIndex
	DiffCount             uint32
}

func (e *SnapshotInconsistencyError) Error() string {
	return fmt.Sprintf(
		"tangle: snapshot inconsistency (%s): sepIndex=%d ledgerIndex=%d diffCount=%d",
		e.Kind, e.SEPIndex, e.LedgerIndex, e.DiffCount,
	)
}
