package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent translations, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "l", 0, "Maximum number of records (default: basic_config.history_limit)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("invalid limit %d", limit)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if limit == 0 {
		limit = a.Config.BasicConfig.HistoryLimit
	}
	records, err := a.Store.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d %s [%s -> %s] %s => %s", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.SourceLanguage, r.TargetLanguage, r.SourceText, r.TranslatedText)
	}
	return printResult(cmd, records, b.String())
}
