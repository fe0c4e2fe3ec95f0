package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "discshelf",
	Short: "Catalog your movies on disc and tape",
	Long: `discshelf - a personal movie catalog

Keeps track of the DVDs, Blu-rays and tapes you own, with metadata and
posters from TMDB. Run 'discshelf serve' for the web interface.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("discshelf {{.Version}}\n")
}
