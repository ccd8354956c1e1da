// Package ocr wraps Tesseract text recognition behind the recognizeText
// boundary the detection pipeline consumes.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// Word is one recognized word with its confidence in [0,1] and bounds in
// the coordinates of the recognized image.
type Word struct {
	Text       string
	Confidence float64
	Bounds     geometry.Region
}

// Engine provides OCR via a single Tesseract client. The client is not
// safe for concurrent use; the mutex serializes recognition calls.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new OCR engine. language is a Tesseract language
// code; empty selects English.
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()

	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// UI captions are short fragments; sparse text segmentation finds
	// isolated words that the default block segmentation misses.
	client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize runs text recognition over the image and returns per-word
// candidates. The context is checked before the (non-interruptible)
// Tesseract call starts.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for OCR: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set OCR image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR bounding boxes: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Bounds: geometry.Region{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}

	return words, nil
}
