package tangle

import "time"

// SnapshotKind distinguishes a full snapshot (which carries ledger
// outputs) from a delta snapshot (which only carries milestone diffs
// since the last full snapshot). The binary codec that produces these
// is out of scope here; this module only needs the distinction for
// validating SnapshotInfo's index arithmetic and for reporting which
// kind failed that check.
type SnapshotKind uint8

const (
	SnapshotFull SnapshotKind = iota
	SnapshotDelta
)

func (k SnapshotKind) String() string {
	if k == SnapshotDelta {
		return "delta"
	}
	return "full"
}

// MilestoneIndex is a monotonic milestone checkpoint number.
type MilestoneIndex uint32

// SnapshotInfo is the bootstrap-time ledger position the tangle
// initializes itself from. It carries a fuller set of fields than the
// tangle itself needs to remember (which is only latest-milestone,
// snapshot-index and pruning-index), matching the header a snapshot
// file's consumer would actually see.
type SnapshotInfo struct {
	Kind         SnapshotKind
	NetworkID    uint64
	Timestamp    time.Time
	SEPIndex     MilestoneIndex
	LedgerIndex  MilestoneIndex
	PruningIndex MilestoneIndex
	DiffCount    uint32
}

// NewSnapshotInfo validates the header integrity constraint a snapshot
// file's index fields must satisfy:
//
//	Full:  ledgerIndex >= sepIndex && ledgerIndex - sepIndex  == diffCount
//	Delta: sepIndex >= ledgerIndex && sepIndex - ledgerIndex  == diffCount
//
// It isn't required by the cache's own contract (the codec that would
// normally enforce this lives outside this module's scope) but gives
// the bootstrap worker's SnapshotInfo consumption path something
// concrete to validate instead of an untyped bag of fields.
func NewSnapshotInfo(kind SnapshotKind, networkID uint64, ts time.Time, sepIndex, ledgerIndex, pruningIndex MilestoneIndex, diffCount uint32) (SnapshotInfo, error) {
	switch kind {
	case SnapshotFull:
		if ledgerIndex < sepIndex || uint32(ledgerIndex-sepIndex) != diffCount {
			return SnapshotInfo{}, &SnapshotInconsistencyError{
				Kind: kind, SEPIndex: sepIndex, LedgerIndex: ledgerIndex, DiffCount: diffCount,
			}
		}
	case SnapshotDelta:
		if sepIndex < ledgerIndex || uint32(sepIndex-ledgerIndex) != diffCount {
			return SnapshotInfo{}, &SnapshotInconsistencyError{
				Kind: kind, SEPIndex: sepIndex, LedgerIndex: ledgerIndex, DiffCount: diffCount,
			}
		}
	}
	return SnapshotInfo{
		Kind:         kind,
		NetworkID:    networkID,
		Timestamp:    ts,
		SEPIndex:     sepIndex,
		LedgerIndex:  ledgerIndex,
		PruningIndex: pruningIndex,
		DiffCount:    diffCount,
	}, nil
}

// SEPEntry is a solid entry point paired with the milestone index it
// was recorded at, the element type of the snapshot loader's channels.
type SEPEntry struct {
	SEP   MessageId
	Index MilestoneIndex
}

// SnapshotLoader is the external collaborator the bootstrap worker
// depends on: two channels of (SEP, MilestoneIndex) pairs, each closed
// once exhausted, ordered full-before-delta.
type SnapshotLoader interface {
	FullSEPs() <-chan SEPEntry
	DeltaSEPs() <-chan SEPEntry
}
