package recognize

import (
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"pricer/internal/imutil"
	"pricer/internal/template"
	"pricer/pkg/geometry"
)

// Detection failure reasons reported through Diagnostics.
const (
	ReasonOK              = "ok"
	ReasonNoTemplates     = "no corner templates"
	ReasonTopLeftMiss     = "top-left not found"
	ReasonWindowTooSmall  = "search window too small"
	ReasonBottomRightMiss = "bottom-right not found"
	ReasonBadGeometry     = "geometry invalid"
)

// Diagnostics is a snapshot of the most recent tooltip detection attempt.
type Diagnostics struct {
	Reason    string
	TLScore   float64
	TLBound   float64 // bound that admitted (or rejected) the top-left score
	TLRelaxed bool
	BRScore   float64
	BRBound   float64
	BRRelaxed bool
	Rect      geometry.RectInt
}

// Detector runs template-based recognition against a shared template store.
// It is safe for concurrent use; the diagnostics snapshot covers the most
// recently completed detection.
type Detector struct {
	store  *template.Store
	params Params
	log    *slog.Logger

	mu        sync.Mutex
	last      Diagnostics
	lastIdent Identification
}

// NewDetector wires a detector to a template store. A nil logger falls back
// to slog.Default.
func NewDetector(store *template.Store, params Params, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{store: store, params: params, log: log}
}

// LastDetection returns the diagnostics of the most recent DetectTooltip call.
func (d *Detector) LastDetection() Diagnostics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Detector) record(diag Diagnostics) {
	d.mu.Lock()
	d.last = diag
	d.mu.Unlock()
}

// DetectTooltip locates the tooltip panel in a full-screen grayscale frame by
// finding its top-left and bottom-right corner markers. The frame is
// contrast-equalized and blurred before matching so panel glow does not
// depress marker correlation. The returned rect is inset past the markers so
// the ROI covers only panel content. ok is false when either corner cannot
// be accepted or the implied geometry collapses.
func (d *Detector) DetectTooltip(gray gocv.Mat) (geometry.RectInt, bool) {
	diag := Diagnostics{Reason: ReasonNoTemplates}
	defer func() { d.record(diag) }()

	tlVariants, brVariants := d.store.CornerVariants()
	if len(tlVariants) == 0 || len(brVariants) == 0 {
		d.log.Warn("tooltip detection skipped", "reason", diag.Reason)
		return geometry.RectInt{}, false
	}

	frame := imutil.PrepareGrayROI(gray)
	defer frame.Close()

	tl, ok := bestMatch(frame, tlVariants)
	if !ok {
		diag.Reason = ReasonTopLeftMiss
		return geometry.RectInt{}, false
	}
	diag.TLScore = tl.score
	outcome, bound := applyRelax(tl.score, d.params.CornerThreshold, d.params.CornerRelaxMargin, d.params.CornerRelaxFloor)
	diag.TLBound = bound
	diag.TLRelaxed = outcome == acceptedRelaxed
	if outcome == rejected {
		diag.Reason = ReasonTopLeftMiss
		d.log.Debug("top-left marker below bound", "score", tl.score, "bound", bound)
		return geometry.RectInt{}, false
	}
	if diag.TLRelaxed {
		d.log.Debug("top-left marker accepted on relaxed bound", "score", tl.score, "bound", bound)
	}

	// Search for the bottom-right marker strictly below and right of the
	// top-left hit, stepping at least half a marker extent inward so the
	// same corner cannot match twice.
	rx1 := tl.loc.X + max(2, tl.size.X/2)
	ry1 := tl.loc.Y + max(2, tl.size.Y/2)
	if frame.Cols()-rx1 < 8 || frame.Rows()-ry1 < 8 {
		diag.Reason = ReasonWindowTooSmall
		return geometry.RectInt{}, false
	}
	sub := frame.Region(image.Rect(rx1, ry1, frame.Cols(), frame.Rows()))
	br, ok := bestMatch(sub, brVariants)
	sub.Close()
	if !ok {
		diag.Reason = ReasonBottomRightMiss
		return geometry.RectInt{}, false
	}
	diag.BRScore = br.score
	outcome, brBound := applyRelax(br.score, bound, d.params.BottomRightRelaxMargin, d.params.CornerRelaxFloor)
	diag.BRBound = brBound
	diag.BRRelaxed = outcome == acceptedRelaxed
	if outcome == rejected {
		diag.Reason = ReasonBottomRightMiss
		d.log.Debug("bottom-right marker below bound", "score", br.score, "bound", brBound)
		return geometry.RectInt{}, false
	}

	brLoc := image.Point{X: br.loc.X + rx1, Y: br.loc.Y + ry1}
	x1 := tl.loc.X + max(2, tl.size.X/16)
	y1 := tl.loc.Y + max(2, tl.size.Y/16)
	x2 := brLoc.X + br.size.X - max(2, br.size.X/16)
	y2 := brLoc.Y + br.size.Y - max(2, br.size.Y/16)
	if x2 <= x1+10 || y2 <= y1+10 {
		diag.Reason = ReasonBadGeometry
		d.log.Debug("corner pair produced degenerate rect",
			"tl", tl.loc, "br", brLoc)
		return geometry.RectInt{}, false
	}

	rect := geometry.NewRectInt(x1, y1, x2, y2).ClampTo(frame.Cols(), frame.Rows())
	diag.Reason = ReasonOK
	diag.Rect = rect
	return rect, true
}

// CropTooltip detects the tooltip in frame and returns the preprocessed
// (contrast-equalized, denoised) grayscale ROI ready for classification.
// The caller owns the returned mat.
func (d *Detector) CropTooltip(gray gocv.Mat) (gocv.Mat, geometry.RectInt, bool) {
	rect, ok := d.DetectTooltip(gray)
	if !ok {
		return gocv.Mat{}, geometry.RectInt{}, false
	}
	region := gray.Region(image.Rect(rect.X, rect.Y, rect.MaxX(), rect.MaxY()))
	roi := imutil.PrepareGrayROI(region)
	region.Close()
	return roi, rect, true
}
