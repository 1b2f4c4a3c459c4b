package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addName       string
	addFromRecord bool
)

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Record name (default: file name without extension)")
	addCmd.Flags().BoolVar(&addFromRecord, "fingerprint", false, "Treat the input as an fpcalc fingerprint record instead of audio")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <audio-file|fingerprint-file>",
	Short: "Add a track to the corpus",
	Long: `Fingerprints an audio file with fpcalc and stores the record in the corpus.
With --fingerprint the input is already a fingerprint record and is stored as is.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

type AddResponse struct {
	ID string `json:"id"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	var (
		id  string
		err error
	)
	if addFromRecord {
		name := addName
		if name == "" {
			if args[0] == "-" {
				exitWithError(ExitError, "--name is required when reading from stdin")
			}
			base := filepath.Base(args[0])
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		record, rerr := readInput(args[0])
		if rerr != nil {
			exitWithError(ExitError, "reading fingerprint: %v", rerr)
		}
		id, err = svc.AddFingerprint(ctx, name, record)
	} else {
		id, err = svc.AddTrack(ctx, args[0], addName)
	}
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		outputHuman("Added %s\n", id)
		return nil
	}
	return outputJSON(AddResponse{ID: id})
}
