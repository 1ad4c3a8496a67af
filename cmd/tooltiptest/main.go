// Command tooltiptest runs tooltip detection and classification on a saved
// screenshot and prints what the pipeline saw.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	_ "golang.org/x/image/tiff"

	"pricer/internal/imutil"
	"pricer/internal/recognize"
	"pricer/internal/template"
)

func main() {
	imagePath := flag.String("image", "", "Path to screenshot (TIFF, PNG, or JPEG)")
	templateDir := flag.String("templates", "templates", "Template root directory")
	threshold := flag.Float64("threshold", 0.70, "Corner acceptance threshold")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: tooltiptest -image <path> [-templates <dir>] [-threshold 0.70]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	frame, err := imutil.FromImage(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	defer frame.Close()
	gray := imutil.ToGray(frame)
	defer gray.Close()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := template.NewStore(*templateDir, template.WithLogger(log))
	defer store.Close()

	params := recognize.DefaultParams()
	params.CornerThreshold = *threshold
	det := recognize.NewDetector(store, params, log)

	roi, rect, ok := det.CropTooltip(gray)
	diag := det.LastDetection()
	fmt.Printf("\nCorner detection: %s\n", diag.Reason)
	fmt.Printf("  top-left:     score=%.3f bound=%.3f relaxed=%v\n", diag.TLScore, diag.TLBound, diag.TLRelaxed)
	fmt.Printf("  bottom-right: score=%.3f bound=%.3f relaxed=%v\n", diag.BRScore, diag.BRBound, diag.BRRelaxed)
	if !ok {
		os.Exit(1)
	}
	defer roi.Close()
	fmt.Printf("  rect: (%d,%d) %dx%d\n", rect.X, rect.Y, rect.Width, rect.Height)

	slot, potScore := det.ClassifyPotential(roi)
	fmt.Printf("\nPotential: %d (score=%.3f)\n", slot, potScore)

	if name, score, found := det.IdentifyItem(roi); found {
		ident := det.LastIdentification()
		fmt.Printf("Item: %q score=%.3f bound=%.3f relaxed=%v z=%.2f\n",
			name, score, ident.Bound, ident.Relaxed, ident.Spread.ZScore)
	} else {
		fmt.Println("Item: no template matched")
	}
}
