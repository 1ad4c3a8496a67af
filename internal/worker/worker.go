// Package worker runs the hotkey-triggered pipelines: single-tooltip price
// checks and whole-inventory scans. It owns the recognition components and
// the price store handle; capture and overlay rendering stay outside.
package worker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"pricer/internal/capture"
	"pricer/internal/config"
	"pricer/internal/imutil"
	"pricer/internal/logging"
	"pricer/internal/ocr"
	"pricer/internal/pricedb"
	"pricer/internal/recognize"
	"pricer/internal/template"
	"pricer/pkg/geometry"
)

// maxDuplicatesPerItem caps how many overlay hints one item may contribute
// to an inventory scan.
const maxDuplicatesPerItem = 9

// Worker drives the recognition pipelines. Construct it once and invoke the
// pipelines from a single goroutine; only the price store underneath is safe
// for concurrent use.
type Worker struct {
	log       *slog.Logger
	cfg       config.Config
	templates *template.Store
	detector  *recognize.Detector
	prices    *pricedb.Store
	ocrEngine *ocr.Engine
}

// New wires a worker. ocrEngine may be nil; the OCR fallback is skipped then.
func New(cfg config.Config, templates *template.Store, detector *recognize.Detector, prices *pricedb.Store, ocrEngine *ocr.Engine, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		log:       log,
		cfg:       cfg,
		templates: templates,
		detector:  detector,
		prices:    prices,
		ocrEngine: ocrEngine,
	}
}

// PriceCheckResult is what a tooltip check produces for the overlay.
type PriceCheckResult struct {
	Found     bool
	Item      string
	Score     float64
	Potential int
	Text      string            // two overlay lines: name(+LP) and price
	Origin    geometry.PointInt // screen point to anchor the overlay at
	ROIPath   string            // saved crop when no template matched
}

// PriceCheck captures the screen, finds the tooltip, identifies the item and
// resolves its price. When template identification fails it falls back to
// OCR; when that fails too, the crop is saved for labeling and the name (if
// OCR produced one) is queued as pending.
func (w *Worker) PriceCheck() (PriceCheckResult, error) {
	t0 := time.Now()
	frame, bounds, err := capture.GrabFullScreen()
	if err != nil {
		return PriceCheckResult{}, err
	}
	defer frame.Close()
	gray := imutil.ToGray(frame)
	defer gray.Close()

	prepped, rect, ok := w.detector.CropTooltip(gray)
	if !ok {
		diag := w.detector.LastDetection()
		w.log.Info("tooltip not found", "reason", diag.Reason, "tl_score", diag.TLScore)
		return PriceCheckResult{}, nil
	}
	defer prepped.Close()

	origin := geometry.PointInt{X: bounds.Min.X + rect.X + 40, Y: bounds.Min.Y + rect.Y + 60}

	potential, potScore := w.detector.ClassifyPotential(prepped)
	if potScore > 0 {
		w.log.Debug("potential classified", "slot", potential, "score", potScore)
	}

	name, score, matched := w.detector.IdentifyItem(prepped)
	if matched {
		text := w.overlayText(name, potential)
		w.log.Info("template match",
			"item", name, "score", score, "potential", potential,
			"elapsed_ms", time.Since(t0).Milliseconds())
		return PriceCheckResult{
			Found:     true,
			Item:      name,
			Score:     score,
			Potential: potential,
			Text:      text,
			Origin:    origin,
		}, nil
	}

	return w.priceCheckFallback(prepped, origin, potential, t0)
}

// priceCheckFallback reads the ROI with OCR and, failing a price match,
// saves the crop for interactive labeling.
func (w *Worker) priceCheckFallback(roi gocv.Mat, origin geometry.PointInt, potential int, t0 time.Time) (PriceCheckResult, error) {
	if w.ocrEngine != nil {
		lines, err := w.ocrEngine.RecognizeLines(roi)
		if err != nil {
			w.log.Warn("OCR fallback failed", "error", err)
		} else if parsed := ocr.ParseTooltip(lines); parsed.Name != "" {
			if parsed.Potential != nil {
				potential = *parsed.Potential
			}
			entry, fscore := w.prices.FindBest(parsed.Lines, 80, &potential, false)
			if entry != nil {
				w.log.Info("OCR match", "item", entry.Name, "score", fscore,
					"elapsed_ms", time.Since(t0).Milliseconds())
				return PriceCheckResult{
					Found:     true,
					Item:      entry.Name,
					Potential: potential,
					Text:      w.overlayText(entry.Name, potential),
					Origin:    origin,
				}, nil
			}
			if _, err := w.prices.EnsurePending(parsed.Name, &potential); err != nil {
				w.log.Warn("queueing pending item failed", "error", err)
			}
		}
	}

	roiPath := w.saveROI(roi)
	w.log.Info("template missing, crop saved for labeling",
		"path", roiPath, "elapsed_ms", time.Since(t0).Milliseconds())
	return PriceCheckResult{
		Text:    fmt.Sprintf("Шаблон не найден (ЛП %d)\nСоздайте новый образец", potential),
		Origin:  origin,
		ROIPath: roiPath,
	}, nil
}

// CaptureSample grabs the screen, locates the tooltip under the cursor and
// stores its title band as a new name template for item. When the potential
// classifier recognized a level, the icon strip left of the title is stored
// as an LP sample and the item is queued as pending with that level.
func (w *Worker) CaptureSample(item string) (string, error) {
	frame, _, err := capture.GrabFullScreen()
	if err != nil {
		return "", err
	}
	defer frame.Close()
	gray := imutil.ToGray(frame)
	defer gray.Close()

	prepped, rect, ok := w.detector.CropTooltip(gray)
	if !ok {
		diag := w.detector.LastDetection()
		return "", fmt.Errorf("tooltip not found: %s", diag.Reason)
	}
	defer prepped.Close()

	band := w.cfg.TitleBand
	nameRect := geometry.RectInt{
		X:      rect.X + int(band.X1*float64(rect.Width)),
		Y:      rect.Y + int(band.Y1*float64(rect.Height)),
		Width:  int((band.X2 - band.X1) * float64(rect.Width)),
		Height: int((band.Y2 - band.Y1) * float64(rect.Height)),
	}

	potential, potScore := w.detector.ClassifyPotential(prepped)
	path, err := w.templates.SaveNameSample(gray, item, nameRect, potential)
	if err != nil {
		return "", err
	}

	if potential > 0 && potScore > 0 {
		lpRect := geometry.RectInt{
			X:      rect.X,
			Y:      nameRect.Y,
			Width:  nameRect.X - rect.X,
			Height: nameRect.Height,
		}
		if _, err := w.templates.SaveLPSample(gray, item, lpRect, potential); err != nil {
			w.log.Warn("LP sample not saved", "item", item, "error", err)
		}
		if _, err := w.prices.EnsurePending(item, &potential); err != nil {
			w.log.Warn("queueing pending item failed", "error", err)
		}
	} else if _, err := w.prices.EnsurePending(item, nil); err != nil {
		w.log.Warn("queueing pending item failed", "error", err)
	}

	w.log.Info("sample captured", "item", item, "path", path, "potential", potential)
	return path, nil
}

func (w *Worker) saveROI(roi gocv.Mat) string {
	if err := os.MkdirAll(w.cfg.LogDir, 0o755); err != nil {
		return ""
	}
	path := filepath.Join(w.cfg.LogDir, fmt.Sprintf("roi_%d.png", time.Now().UnixMilli()))
	if !gocv.IMWrite(path, roi) {
		return ""
	}
	logging.EnforceImageQuota(w.cfg.LogImageQuotaMB, w.cfg.LogDir)
	return path
}

// overlayText builds the two overlay lines: item name with an LP suffix, and
// the resolved price or a not-in-table notice.
func (w *Worker) overlayText(item string, potential int) string {
	first := item
	if potential > 0 {
		first = fmt.Sprintf("%s (ЛП %d)", item, potential)
	}

	var entry *pricedb.Entry
	if potential > 0 {
		entry, _ = w.prices.FindBest([]string{item}, 80, &potential, true)
	}
	if entry == nil {
		entry, _ = w.prices.FindBest([]string{item}, 80, nil, false)
	}
	second := "нет в таблице"
	if entry != nil {
		if v := entry.Slots[potential]; v.HasData() {
			second = FormatSlot(v)
		}
	}
	return first + "\n" + second
}
