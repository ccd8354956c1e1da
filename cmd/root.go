package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cobra "github.com/spf13/cobra"
	viper "github.com/spf13/viper"

	config "github.com/pixelpoint/cli/config"
	logger "github.com/pixelpoint/cli/internal/logger"
)

var (
	cfg *config.Config
	v   *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "pixelpoint",
	Short: "Visual target acquisition for pixel-only desktop agents",
	Long: `pixelpoint locates described UI elements on screen and clicks them.
It combines template, feature, OCR and color detection over zoomed
region captures, and learns successful coordinates per application
so repeated targets resolve without a fresh detection pass.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use 'pixelpoint focus --description \"...\"' to click a target or --help to see available commands.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is .pixelpoint/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	logger.Init(verbose)

	configPath, _ := rootCmd.PersistentFlags().GetString("config")

	v = viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".pixelpoint")
	}
	v.SetEnvPrefix("PIXELPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = config.DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("No config file found, using defaults")
		return
	}

	if err := v.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("Loaded config", "path", v.ConfigFileUsed())
}
