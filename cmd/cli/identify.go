package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(identifyCmd)
}

var identifyCmd = &cobra.Command{
	Use:   "identify <audio-file>",
	Short: "Identify an audio clip against the corpus",
	Long: `Transcodes the clip to mono WAV with ffmpeg, fingerprints it with fpcalc and
prints the closest corpus record.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	res, err := svc.MatchAudio(ctx, args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	printMatch(res)
	return nil
}
