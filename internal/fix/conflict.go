package fix

import (
	"cmp"

	"github.com/wharflab/sentinel/internal/rules"
)

// editsOverlap checks if two edits overlap in their byte ranges.
// Overlapping edits cannot both be applied safely.
//
// Ranges are half-open, so edits that only touch do not overlap. A
// zero-width insert overlaps a replacement only when it falls strictly
// inside it; two inserts at the same offset overlap because their order
// would be ambiguous.
func editsOverlap(a, b rules.TextEdit) bool {
	if a.Location.File != b.Location.File {
		return false
	}

	aStart, aEnd := a.Location.Start.Offset, a.Location.End.Offset
	bStart, bEnd := b.Location.Start.Offset, b.Location.End.Offset

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart
	}
	return aStart < bEnd && bStart < aEnd
}

// compareEdits orders edits by descending start offset. At equal starts the
// longer edit comes first so an insert before a replacement is applied
// after it and ends up in front of the new text.
func compareEdits(a, b rules.TextEdit) int {
	if c := cmp.Compare(b.Location.Start.Offset, a.Location.Start.Offset); c != 0 {
		return c
	}
	return cmp.Compare(b.Location.End.Offset, a.Location.End.Offset)
}
