package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:     "delete <record-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a record from the corpus",
	Long:    `Deletes a record by its full name as printed by "list", e.g. song.bin.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext()
	defer stop()

	svc := mustOpenService(ctx)
	defer svc.Close()

	if err := svc.DeleteTrack(ctx, args[0]); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if humanOutput {
		outputHuman("Deleted %s\n", args[0])
		return nil
	}
	return outputJSON(DeleteResponse{ID: args[0], Deleted: true})
}
