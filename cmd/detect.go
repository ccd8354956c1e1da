package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"

	cobra "github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect UI elements matching a description",
	Long: `Run the detection ensemble over the current screen (or a PNG file)
and print the merged, ranked candidate list as JSON. Supply a reference
patch to enable template and feature matching; without one only the text
strategy applies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect(cmd)
	},
}

func init() {
	detectCmd.Flags().StringP("description", "d", "", "target description (required)")
	detectCmd.Flags().String("patch", "", "PNG reference patch of the target")
	detectCmd.Flags().String("type", "", "element type hint (button, text_field, link, icon)")
	detectCmd.Flags().String("image", "", "detect over a PNG file instead of a live capture")
	_ = detectCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command) error {
	description, _ := cmd.Flags().GetString("description")
	patchPath, _ := cmd.Flags().GetString("patch")
	elementType, _ := cmd.Flags().GetString("type")
	imagePath, _ := cmd.Flags().GetString("image")

	target, err := targetFromFlags(description, patchPath, elementType)
	if err != nil {
		return err
	}

	detector, closeDetector := newDetector()
	defer closeDetector()

	ctx := cmd.Context()
	var img *image.RGBA
	if imagePath != "" {
		img, err = loadRGBA(imagePath)
		if err != nil {
			return err
		}
	} else {
		controller, err := newController()
		if err != nil {
			return err
		}
		defer func() { _ = controller.Close() }()

		result, err := newCapturer(controller).CaptureFull(ctx, false)
		if err != nil {
			return err
		}
		img = result.Image
	}

	candidates := detector.DetectElements(ctx, img, target)
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates found for %q", description)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(candidates)
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if rgba, ok := decoded.(*image.RGBA); ok {
		return rgba, nil
	}
	b := decoded.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), decoded, b.Min, draw.Src)
	return rgba, nil
}
