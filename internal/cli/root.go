// Package cli implements the translingo commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"translingo/internal/app"
	"translingo/internal/config"
)

var (
	configPath string
	formatFlag string
)

// RootCmd is the top-level command. Without a subcommand it serves the API.
var RootCmd = &cobra.Command{
	Use:           "translingo",
	Short:         "Translation service with multi-provider fallback",
	Long:          "Translate text through DeepL, an LLM, MyMemory and LibreTranslate, falling back in that order, and keep a history of results.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.RunE = runServe
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $TRANSLINGO_CONFIG or ./config.json)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("TRANSLINGO_CONFIG")
}

func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cmd.Context(), cfg)
}

// printResult writes v as indented JSON when --format=json and text otherwise.
func printResult(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
