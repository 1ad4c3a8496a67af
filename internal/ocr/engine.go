// Package ocr is the text-recognition fallback for tooltips whose templates
// are missing: it reads the tooltip ROI with Tesseract and extracts an item
// name and potential level from the recognized lines.
package ocr

import (
	"fmt"
	"sort"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Line is one recognized text line with its position and mean confidence.
type Line struct {
	Text       string
	Left       int
	Top        int
	Confidence float64
}

// Engine wraps a Tesseract client configured for mixed Russian/English
// tooltip text. Not safe for concurrent use; the worker owns one instance.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates the OCR engine. tessdataDir overrides the language data
// location; empty keeps the system default.
func NewEngine(tessdataDir string) (*Engine, error) {
	client := gosseract.NewClient()
	if tessdataDir != "" {
		if err := client.SetTessdataPrefix(tessdataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata dir: %w", err)
		}
	}

	// Tooltips mix Cyrillic item names with Latin stat abbreviations
	if err := client.SetLanguage("rus", "eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	_ = client.SetVariable("preserve_interword_spaces", "1")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeLines runs OCR over a tooltip ROI and returns the recognized text
// lines top to bottom.
func (e *Engine) RecognizeLines(img gocv.Mat) ([]Line, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	processed := preprocessForOCR(img)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	var lines []Line
	for _, b := range boxes {
		text := cleanLine(b.Word)
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			Text:       text,
			Left:       b.Box.Min.X,
			Top:        b.Box.Min.Y,
			Confidence: b.Confidence,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Top != lines[j].Top {
			return lines[i].Top < lines[j].Top
		}
		return lines[i].Left < lines[j].Left
	})
	return lines, nil
}
