package detect

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	ocr "github.com/pixelpoint/cli/internal/ocr"
)

func TestOCRStrategy_MultiWordCaption(t *testing.T) {
	recognizer := &fixedRecognizer{words: []ocr.Word{
		{Text: "Save", Confidence: 0.9, Bounds: geometry.Region{X: 100, Y: 40, Width: 40, Height: 16}},
		{Text: "As", Confidence: 0.9, Bounds: geometry.Region{X: 145, Y: 40, Width: 20, Height: 16}},
		{Text: "Quit", Confidence: 0.95, Bounds: geometry.Region{X: 100, Y: 90, Width: 40, Height: 16}},
	}}

	s := NewOCRStrategy(recognizer)
	out, err := s.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 300, 200)), domain.Target{Description: "Save As"})
	require.NoError(t, err)
	require.NotEmpty(t, out)

	top := out[0]
	assert.Equal(t, "Save As", top.Text)
	// Union bounds span both words.
	assert.Equal(t, geometry.Region{X: 100, Y: 40, Width: 65, Height: 16}, top.Bounds)
	assert.Greater(t, top.Confidence, 0.7)
}

func TestOCRStrategy_ToleratesRecognitionNoise(t *testing.T) {
	recognizer := &fixedRecognizer{words: []ocr.Word{
		// "Subrnit" is the classic m->rn confusion.
		{Text: "Subrnit", Confidence: 0.8, Bounds: geometry.Region{X: 10, Y: 10, Width: 58, Height: 14}},
	}}

	s := NewOCRStrategy(recognizer)
	out, err := s.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 50)), domain.Target{Description: "Submit"})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "Subrnit", out[0].Text)
}

func TestOCRStrategy_NoMatchReturnsEmpty(t *testing.T) {
	recognizer := &fixedRecognizer{words: []ocr.Word{
		{Text: "Window", Confidence: 0.9, Bounds: geometry.Region{X: 10, Y: 10, Width: 58, Height: 14}},
	}}

	s := NewOCRStrategy(recognizer)
	out, err := s.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 50)), domain.Target{Description: "Logout"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOCRStrategy_InapplicableWithoutRecognizer(t *testing.T) {
	s := NewOCRStrategy(nil)
	assert.False(t, s.Applicable(domain.Target{Description: "anything"}))

	out, err := s.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), domain.Target{Description: "anything"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGuessElementType(t *testing.T) {
	tests := []struct {
		desc string
		want domain.ElementType
	}{
		{"the Submit button", domain.ElementButton},
		{"search input box", domain.ElementTextField},
		{"forgot password link", domain.ElementLink},
		{"settings icon", domain.ElementIcon},
		{"something else entirely", domain.ElementUnknown},
	}
	for _, tt := range tests {
		got := guessElementType(domain.Target{Description: tt.desc})
		assert.Equal(t, tt.want, got, tt.desc)
	}
}

func TestNormalizeAndSimilarity(t *testing.T) {
	assert.Equal(t, "save as", normalizeText("  Save As! "))
	assert.Equal(t, 1.0, similarity("submit", "submit"))
	assert.InDelta(t, 0.714, similarity("subrnit", "submit"), 0.01)
	assert.Equal(t, 0.0, similarity("", "submit"))
}
