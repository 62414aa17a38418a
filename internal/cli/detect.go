package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "detect [text...]",
		Short: "Guess the language of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDetect,
	})
}

func runDetect(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	code := ""
	if a.Remote != nil {
		if c, err := a.Remote.DetectLanguage(cmd.Context(), text); err == nil {
			code = strings.ToLower(c)
		} else {
			a.Logger.WithError(err).Warn("Remote language detection failed, using heuristic")
		}
	}
	if code == "" {
		code = a.Detector.Detect(text)
	}
	return printResult(cmd, map[string]string{"language": code}, code)
}
