package cmd

import (
	"encoding/json"
	"os"

	cobra "github.com/spf13/cobra"

	domain "github.com/pixelpoint/cli/internal/domain"
	logger "github.com/pixelpoint/cli/internal/logger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning cache telemetry",
	Long: `Print per-application aggregates of the coordinate learning cache
(entry counts, mean confidence, hit rate) and the top entries by
confidence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func init() {
	statsCmd.Flags().IntP("top", "n", 10, "number of top entries to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command) error {
	top, _ := cmd.Flags().GetInt("top")

	ctx := cmd.Context()
	cache, store, err := newCache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close learning store", "error", err)
		}
	}()

	report := struct {
		Applications []domain.LearningStats `json:"applications"`
		TopEntries   []domain.LearningEntry `json:"top_entries"`
	}{
		Applications: cache.Stats(),
		TopEntries:   cache.TopEntries(top),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
