// Package main provides the headless entry point: it wires the template
// store, recognition pipeline and price store, then runs a single price
// check or inventory scan. The GUI shell, hotkeys and overlay rendering are
// external collaborators driving the same worker.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"pricer/internal/config"
	"pricer/internal/logging"
	"pricer/internal/ocr"
	"pricer/internal/pricedb"
	"pricer/internal/recognize"
	"pricer/internal/template"
	"pricer/internal/version"
	"pricer/internal/worker"
)

const appTitle = "Pricer"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the settings file")
	inventory := flag.Bool("inventory", false, "Scan the inventory instead of checking a tooltip")
	sample := flag.String("sample", "", "Capture the current tooltip as a template sample for the named item")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", appTitle, version.String())
		return
	}

	if err := run(*configPath, *inventory, *sample); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, inventory bool, sample string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return err
	}
	defer logging.Close()
	log.Info("starting", "app", appTitle, "version", version.String())

	prices, err := pricedb.Open(cfg.PricesPath, log)
	if err != nil {
		if errors.Is(err, pricedb.ErrLegacySchema) {
			return fmt.Errorf("%w\nrun: migrateprices -input %s", err, cfg.PricesPath)
		}
		return err
	}

	opts := []template.Option{template.WithLogger(log)}
	if len(cfg.Scales) > 0 {
		opts = append(opts, template.WithScales(cfg.Scales))
	}
	store := template.NewStore(cfg.TemplateDir, opts...)
	defer store.Close()

	det := recognize.NewDetector(store, cfg.Matching.Params(), log)

	engine, err := ocr.NewEngine(cfg.TessdataDir)
	if err != nil {
		log.Warn("OCR unavailable, template matching only", "error", err)
		engine = nil
	} else {
		defer engine.Close()
	}

	w := worker.New(cfg, store, det, prices, engine, log)

	if sample != "" {
		path, err := w.CaptureSample(sample)
		if err != nil {
			return err
		}
		fmt.Printf("Sample saved to %s\n", path)
		return nil
	}

	if inventory {
		hints, err := w.InventoryScan()
		if err != nil {
			return err
		}
		for _, h := range hints {
			fmt.Printf("%s score=%.3f at (%d,%d)\n", h.Item, h.Score, h.Rect.X, h.Rect.Y)
			for _, line := range h.Lines {
				fmt.Printf("    %s\n", line)
			}
		}
		if missing := w.MissingInventoryTemplates(); len(missing) > 0 {
			log.Info("items without inventory templates", "count", len(missing), "items", missing)
		}
		return nil
	}

	res, err := w.PriceCheck()
	if err != nil {
		return err
	}
	if res.Text == "" {
		fmt.Println("Tooltip not found")
		return nil
	}
	fmt.Println(res.Text)
	return nil
}
