package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/vmunix/discshelf/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

func init() {
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config file",
		Long:  "Writes the default config to path, or to the XDG config location when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  "Validates config.toml syntax, field values and environment variable substitution without starting the server.",
		Args:  cobra.NoArgs,
		RunE:  runConfigValidate,
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	shown := *cfg
	if shown.TMDB.APIKey != "" {
		shown.TMDB.APIKey = "********"
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"path": path, "config": shown})
	}
	if path == "" {
		fmt.Fprintln(out, "# no config file found, showing defaults")
	} else {
		fmt.Fprintf(out, "# %s\n", path)
	}
	return toml.NewEncoder(out).Encode(shown)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, path, err := loadConfig()
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	if path == "" {
		fmt.Fprintln(out, "No config file found; defaults are valid.")
	} else {
		fmt.Fprintf(out, "Validated %s\n\n", path)
	}
	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}
	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Server:     %s (log: %s)\n", cfg.Server.Addr(), cfg.Server.LogLevel)
	fmt.Fprintf(w, "  Database:   %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "  Posters:    %s\n", cfg.Posters.Dir)
	if cfg.TMDB.APIKey == "" {
		fmt.Fprintln(w, "  TMDB:       not configured (manual entry only)")
	} else {
		fmt.Fprintf(w, "  TMDB:       enabled (cache %s, enrich %d)\n", cfg.TMDB.CacheTTL, cfg.TMDB.Enrich())
	}
}
