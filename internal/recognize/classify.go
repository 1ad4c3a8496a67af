package recognize

import (
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// ScoreSpread summarizes how the winning score stood out from the field.
// A low z-score means the winner barely separated from the runners-up.
type ScoreSpread struct {
	Mean   float64
	StdDev float64
	ZScore float64 // winner's score in standard deviations above the mean
}

func spreadOf(scores []float64, winner float64) ScoreSpread {
	if len(scores) < 2 {
		return ScoreSpread{Mean: winner}
	}
	mean, std := stat.MeanStdDev(scores, nil)
	sp := ScoreSpread{Mean: mean, StdDev: std}
	if std > 0 {
		sp.ZScore = (winner - mean) / std
	}
	return sp
}

// Identification is a snapshot of the most recent item classification.
type Identification struct {
	Name    string
	Score   float64
	Bound   float64
	Relaxed bool
	Spread  ScoreSpread
}

// LastIdentification returns diagnostics for the most recent IdentifyItem call
// on this detector.
func (d *Detector) LastIdentification() Identification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastIdent
}

// IdentifyItem matches the tooltip ROI against every item's name templates and
// returns the best-scoring item. Acceptance follows the usual threshold with a
// relaxed fallback bound. ok is false when no item clears even the relaxed
// bound, or no item templates are loaded.
func (d *Detector) IdentifyItem(roi gocv.Mat) (name string, score float64, ok bool) {
	var (
		bestName  string
		bestScr   = -1.0
		allScores []float64
	)
	for _, item := range d.store.Items() {
		s, found := bestScore(roi, d.store.NameVariants(item))
		if !found {
			continue
		}
		allScores = append(allScores, s)
		if s > bestScr {
			bestScr = s
			bestName = item
		}
	}
	if bestName == "" {
		return "", 0, false
	}

	outcome, bound := applyRelax(bestScr, d.params.ItemThreshold, d.params.ItemRelaxMargin, d.params.ItemRelaxFloor)
	ident := Identification{
		Name:    bestName,
		Score:   bestScr,
		Bound:   bound,
		Relaxed: outcome == acceptedRelaxed,
		Spread:  spreadOf(allScores, bestScr),
	}
	d.mu.Lock()
	d.lastIdent = ident
	d.mu.Unlock()

	if outcome == rejected {
		d.log.Debug("item below bound", "best", bestName, "score", bestScr, "bound", bound)
		return "", bestScr, false
	}
	if ident.Relaxed {
		d.log.Info("item accepted on relaxed bound",
			"item", bestName, "score", bestScr, "bound", bound, "z", ident.Spread.ZScore)
	}
	return bestName, bestScr, true
}

// ClassifyPotential determines the enchant level (0..4) shown in the tooltip
// ROI. Levels 1..4 are matched against their star templates; when the best
// candidate fails even the relaxed bound the item is taken as unenchanted and
// level 0 is returned with the best observed score.
func (d *Detector) ClassifyPotential(roi gocv.Mat) (slot int, score float64) {
	bestSlot := 0
	bestScr := -1.0
	for s := 1; s <= 4; s++ {
		scr, found := bestScore(roi, d.store.PotentialVariants(s))
		if !found {
			continue
		}
		if scr > bestScr {
			bestScr = scr
			bestSlot = s
		}
	}
	if bestSlot == 0 {
		return 0, 0
	}
	outcome, bound := applyRelax(bestScr, d.params.PotentialThreshold, d.params.PotentialRelaxMargin, d.params.PotentialRelaxFloor)
	if outcome == rejected {
		d.log.Debug("potential below bound, assuming 0",
			"best_slot", bestSlot, "score", bestScr, "bound", bound)
		return 0, bestScr
	}
	if outcome == acceptedRelaxed {
		d.log.Debug("potential accepted on relaxed bound",
			"slot", bestSlot, "score", bestScr, "bound", bound)
	}
	return bestSlot, bestScr
}
