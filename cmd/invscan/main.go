// Command invscan runs the inventory multi-match scanner on a saved
// screenshot and prints every detected icon with its known prices.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"

	"pricer/internal/imutil"
	"pricer/internal/pricedb"
	"pricer/internal/recognize"
	"pricer/internal/template"
	"pricer/internal/worker"
	"pricer/pkg/colorutil"
	"pricer/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to inventory screenshot (TIFF, PNG, or JPEG)")
	templateDir := flag.String("templates", "templates", "Template root directory")
	pricesPath := flag.String("prices", "prices.json", "Price store path")
	threshold := flag.Float64("threshold", 0.80, "Match acceptance threshold")
	outPath := flag.String("out", "", "Write an annotated copy of the screenshot here")
	capture := flag.String("capture", "", "Save -rect of the screenshot as an inventory template for this item")
	rectSpec := flag.String("rect", "", "Capture region as x,y,w,h")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: invscan -image <path> [-templates <dir>] [-prices <file>] [-threshold 0.80]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	frame, err := imutil.FromImage(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	defer frame.Close()
	gray := imutil.ToGray(frame)
	defer gray.Close()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := template.NewStore(*templateDir, template.WithLogger(log))
	defer store.Close()

	if *capture != "" {
		rect, err := parseRect(*rectSpec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad -rect: %v\n", err)
			os.Exit(1)
		}
		path, err := store.SaveInventorySample(gray, *capture, rect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Inventory template saved to %s\n", path)
		return
	}

	prices, err := pricedb.Open(*pricesPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open price store: %v\n", err)
		os.Exit(1)
	}

	params := recognize.DefaultParams()
	params.InventoryThreshold = *threshold
	det := recognize.NewDetector(store, params, log)

	matches := det.ScanInventory(gray)
	if len(matches) == 0 {
		fmt.Println("No inventory matches")
		return
	}
	for _, m := range matches {
		fmt.Printf("%-30s score=%.3f rect=(%d,%d) %dx%d\n",
			m.Item, m.Score, m.Rect.X, m.Rect.Y, m.Rect.Width, m.Rect.Height)
		for slot, v := range prices.GetPricesByPotential(m.Item, 70) {
			fmt.Printf("    LP%d: %s\n", slot, worker.FormatSlot(v))
		}
	}

	if *outPath != "" {
		for _, m := range matches {
			r := image.Rect(m.Rect.X, m.Rect.Y, m.Rect.MaxX(), m.Rect.MaxY())
			gocv.Rectangle(&frame, r, colorutil.ScoreColor(m.Score, *threshold), 2)
		}
		if ok := gocv.IMWrite(*outPath, frame); !ok {
			fmt.Fprintf(os.Stderr, "Failed to write %s\n", *outPath)
			os.Exit(1)
		}
		fmt.Printf("Annotated screenshot written to %s\n", *outPath)
	}
}

// parseRect parses "x,y,w,h" into a rectangle.
func parseRect(spec string) (geometry.RectInt, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return geometry.RectInt{}, fmt.Errorf("want x,y,w,h, got %q", spec)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.RectInt{}, err
		}
		vals[i] = v
	}
	r := geometry.RectInt{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width <= 0 || r.Height <= 0 {
		return geometry.RectInt{}, fmt.Errorf("empty region %q", spec)
	}
	return r, nil
}
