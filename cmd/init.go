package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	cobra "github.com/spf13/cobra"

	config "github.com/pixelpoint/cli/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project with a default pixelpoint configuration",
	Long: `Create the .pixelpoint directory with a default configuration file.
The learning database is created next to it on first use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeProject(cmd)
	},
}

func init() {
	initCmd.Flags().Bool("overwrite", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

func initializeProject(cmd *cobra.Command) error {
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	configPath := filepath.Join(".pixelpoint", "config.yaml")
	if _, err := os.Stat(configPath); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", configPath)
	}

	if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}
