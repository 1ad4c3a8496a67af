// Package recognize implements the visual recognition pipeline: tooltip
// corner/ROI detection, item and potential classification, and inventory
// multi-match scanning, all built on normalized cross-correlation against the
// template store.
package recognize

// Params holds the recognition thresholds and relaxation bounds. The margins
// and floors are empirically tuned for the game's UI rendering, so they are
// carried as configuration rather than constants.
type Params struct {
	// Corner/ROI detection
	CornerThreshold        float64 // primary acceptance bound for the top-left marker
	CornerRelaxMargin      float64 // secondary bound = threshold - margin
	CornerRelaxFloor       float64 // secondary bound never drops below this
	BottomRightRelaxMargin float64 // margin applied against whichever bound the top-left used

	// Item identification
	ItemThreshold   float64
	ItemRelaxMargin float64
	ItemRelaxFloor  float64

	// Potential classification
	PotentialThreshold   float64
	PotentialRelaxMargin float64
	PotentialRelaxFloor  float64

	// Inventory scanning
	InventoryThreshold   float64
	InventoryMaxPerItem  int
	InventorySuppressIoU float64
}

// DefaultParams returns recognition parameters tuned for the stock UI scale set.
func DefaultParams() Params {
	return Params{
		CornerThreshold:        0.70,
		CornerRelaxMargin:      0.08,
		CornerRelaxFloor:       0.52,
		BottomRightRelaxMargin: 0.05,

		ItemThreshold:   0.85,
		ItemRelaxMargin: 0.07,
		ItemRelaxFloor:  0.72,

		PotentialThreshold:   0.90,
		PotentialRelaxMargin: 0.08,
		PotentialRelaxFloor:  0.78,

		InventoryThreshold:   0.80,
		InventoryMaxPerItem:  3,
		InventorySuppressIoU: 0.35,
	}
}

// relaxOutcome reports how a score fared against a threshold-then-relax policy.
type relaxOutcome int

const (
	accepted        relaxOutcome = iota // score met the primary threshold
	acceptedRelaxed                     // score met only the relaxed bound
	rejected
)

// applyRelax evaluates score against threshold with a secondary relaxed bound
// of max(floor, threshold-margin). It returns the outcome and the bound that
// actually admitted (or finally rejected) the score.
func applyRelax(score, threshold, margin, floor float64) (relaxOutcome, float64) {
	if score >= threshold {
		return accepted, threshold
	}
	relaxed := threshold - margin
	if relaxed < floor {
		relaxed = floor
	}
	if score >= relaxed {
		return acceptedRelaxed, relaxed
	}
	return rejected, relaxed
}
