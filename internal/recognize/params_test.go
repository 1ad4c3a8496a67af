package recognize

import "testing"

func TestApplyRelaxPrimaryAcceptance(t *testing.T) {
	outcome, bound := applyRelax(0.90, 0.85, 0.07, 0.72)
	if outcome != accepted || bound != 0.85 {
		t.Errorf("above threshold: outcome=%v bound=%v", outcome, bound)
	}
	outcome, _ = applyRelax(0.85, 0.85, 0.07, 0.72)
	if outcome != accepted {
		t.Errorf("exactly at threshold should be a primary accept, got %v", outcome)
	}
}

func TestApplyRelaxRelaxedBand(t *testing.T) {
	// threshold-margin = 0.78 is above the floor, so that is the bound
	outcome, bound := applyRelax(0.80, 0.85, 0.07, 0.72)
	if outcome != acceptedRelaxed || bound != 0.78 {
		t.Errorf("relaxed band: outcome=%v bound=%v", outcome, bound)
	}
	outcome, _ = applyRelax(0.78, 0.85, 0.07, 0.72)
	if outcome != acceptedRelaxed {
		t.Errorf("exactly at relaxed bound should accept, got %v", outcome)
	}
}

func TestApplyRelaxFloor(t *testing.T) {
	// threshold-margin would be 0.44, but the floor holds at 0.52
	outcome, bound := applyRelax(0.52, 0.60, 0.16, 0.52)
	if outcome != acceptedRelaxed || bound != 0.52 {
		t.Errorf("at floor: outcome=%v bound=%v", outcome, bound)
	}
	outcome, _ = applyRelax(0.5199, 0.60, 0.16, 0.52)
	if outcome != rejected {
		t.Errorf("just under floor must reject, got %v", outcome)
	}
}

func TestApplyRelaxReject(t *testing.T) {
	outcome, bound := applyRelax(0.50, 0.85, 0.07, 0.72)
	if outcome != rejected {
		t.Errorf("far below: outcome=%v", outcome)
	}
	if bound != 0.78 {
		t.Errorf("reject reports the relaxed bound, got %v", bound)
	}
}
