package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cobra "github.com/spf13/cobra"

	focus "github.com/pixelpoint/cli/internal/focus"
	logger "github.com/pixelpoint/cli/internal/logger"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Locate a described UI element and click it",
	Long: `Drive the full targeting pipeline for one element: full-screen
capture, coarse region hint, zoomed capture, precise detection, click and
post-click verification. The verified outcome feeds the per-application
learning cache, so repeat targets resolve faster.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFocus(cmd)
	},
}

func init() {
	focusCmd.Flags().StringP("description", "d", "", "target description (required)")
	focusCmd.Flags().StringP("app", "a", "", "application name for the learning cache key")
	focusCmd.Flags().String("patch", "", "PNG reference patch of the target")
	focusCmd.Flags().String("type", "", "element type hint (button, text_field, link, icon)")
	focusCmd.Flags().Duration("timeout", 2*time.Minute, "overall session timeout")
	_ = focusCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(focusCmd)
}

func runFocus(cmd *cobra.Command) error {
	description, _ := cmd.Flags().GetString("description")
	app, _ := cmd.Flags().GetString("app")
	patchPath, _ := cmd.Flags().GetString("patch")
	elementType, _ := cmd.Flags().GetString("type")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	target, err := targetFromFlags(description, patchPath, elementType)
	if err != nil {
		return err
	}

	controller, err := newController()
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	detector, closeDetector := newDetector()
	defer closeDetector()

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cache, store, err := newCache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close learning store", "error", err)
		}
	}()

	orchestrator := focus.New(newCapturer(controller), detector, controller, cache, nil, focus.Options{
		Zoom:           cfg.Focus.Zoom,
		MaxZoom:        cfg.Focus.MaxZoom,
		ResolveRetries: cfg.Focus.ResolveRetries,
		VerifyRetries:  cfg.Focus.VerifyRetries,
		Floor:          cfg.Learning.Floor,
		AmbiguityDelta: cfg.Focus.AmbiguityDelta,
		StageTimeout:   time.Duration(cfg.Focus.StageTimeout) * time.Second,
		SettleDelay:    time.Duration(cfg.Focus.SettleDelayMillis) * time.Millisecond,
		VerifyDistance: cfg.Focus.VerifyDistance,
	})

	result, runErr := orchestrator.Run(ctx, focus.Request{Application: app, Target: target})

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if result != nil {
		if err := encoder.Encode(result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("focus session failed: %w", runErr)
	}
	return nil
}
