package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"translingo/internal/lang"
	"translingo/internal/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text and record it in the history",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTranslate,
	}

	cmd.Flags().StringP("to", "t", "", "Target language (required)")
	cmd.Flags().String("from", models.AutoLanguage, "Source language")

	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}
	source := lang.NormalizeSource(from)
	target := lang.Normalize(to)
	if target == "" || target == models.AutoLanguage {
		return fmt.Errorf("invalid target language %q", to)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Resolver.Resolve(cmd.Context(), text, source, target)
	if err != nil {
		return err
	}
	rec, err := a.Store.Create(cmd.Context(), models.NewTranslation{
		SourceText:     text,
		TranslatedText: result.Text,
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       result.Provider,
	})
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return printResult(cmd, rec, rec.TranslatedText)
}
