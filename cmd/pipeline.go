package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	capture "github.com/pixelpoint/cli/internal/capture"
	detect "github.com/pixelpoint/cli/internal/detect"
	display "github.com/pixelpoint/cli/internal/display"
	domain "github.com/pixelpoint/cli/internal/domain"
	storage "github.com/pixelpoint/cli/internal/infra/storage"
	learning "github.com/pixelpoint/cli/internal/learning"
	logger "github.com/pixelpoint/cli/internal/logger"
	ocr "github.com/pixelpoint/cli/internal/ocr"
)

// newController opens the configured display backend, or auto-detects the
// first available one.
func newController() (display.Controller, error) {
	var provider display.Provider
	if name := cfg.Display.Provider; name != "" && name != "auto" {
		provider = display.GetProvider(name)
		if provider == nil {
			return nil, fmt.Errorf("unknown display provider %q", name)
		}
		if !provider.IsAvailable() {
			return nil, fmt.Errorf("display provider %q is not available", name)
		}
	} else {
		detected, err := display.Detect()
		if err != nil {
			return nil, err
		}
		provider = detected
	}

	info := provider.GetDisplayInfo()
	logger.Debug("Using display provider", "name", info.Name)
	return provider.GetController(os.Getenv("DISPLAY"))
}

func newCapturer(controller display.Controller) *capture.Capturer {
	return capture.New(controller, capture.Options{
		Enhance:     cfg.Capture.Enhance,
		GridSpacing: cfg.Capture.GridSpacing,
	})
}

// newDetector builds the full strategy ensemble. OCR is best effort: when
// no Tesseract installation is usable the ensemble degrades to the visual
// strategies. The returned closer releases OCR resources.
func newDetector() (*detect.Detector, func()) {
	var recognizer detect.TextRecognizer
	closer := func() {}

	engine, err := ocr.NewEngine(cfg.Detection.OCRLanguage)
	if err != nil {
		logger.Warn("OCR engine unavailable, text strategy disabled", "error", err)
	} else {
		recognizer = engine
		closer = func() {
			if err := engine.Close(); err != nil {
				logger.Warn("Failed to close OCR engine", "error", err)
			}
		}
	}

	ensemble := detect.NewEnsemble(recognizer,
		detect.WithStrategyTimeout(time.Duration(cfg.Detection.StrategyTimeout)*time.Second),
		detect.WithFloor(cfg.Detection.Floor),
	)
	return detect.NewDetector(ensemble), closer
}

// newCache opens the configured learning store and warms the cache from it.
func newCache(ctx context.Context) (*learning.Cache, storage.Store, error) {
	store, err := storage.NewStore(cfg.Learning.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open learning store: %w", err)
	}

	cache := learning.NewCache(store, learning.Params{
		Alpha: cfg.Learning.Alpha,
		Beta:  cfg.Learning.Beta,
		Floor: cfg.Learning.Floor,
	})
	if err := cache.Warmup(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to warm learning cache: %w", err)
	}
	return cache, store, nil
}

// targetFromFlags assembles the detection target from the shared
// description/patch/type flags.
func targetFromFlags(description, patchPath, elementType string) (domain.Target, error) {
	target := domain.Target{
		Description: description,
		Type:        domain.ElementType(elementType),
	}
	if target.Type == "" {
		target.Type = domain.ElementUnknown
	}
	if patchPath != "" {
		data, err := os.ReadFile(patchPath)
		if err != nil {
			return domain.Target{}, fmt.Errorf("failed to read reference patch: %w", err)
		}
		target.ReferencePatch = data
	}
	return target, nil
}
