package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/revsearch/pkg/revsearch/fingerprint"
)

func init() {
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <fingerprint-file|->",
	Short: "Print the sub-fingerprint values of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

type DecodeResponse struct {
	Algorithm byte     `json:"algorithm"`
	Length    int      `json:"length"`
	Values    []uint32 `json:"values"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	v, algorithm, err := loadVector(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if v == nil {
		v = fingerprint.Vector{}
	}

	if humanOutput {
		outputHuman("Algorithm: %d\n", algorithm)
		outputHuman("Length:    %d\n", len(v))
		vals := make([]string, len(v))
		for i, x := range v {
			vals[i] = strconv.FormatUint(uint64(x), 10)
		}
		outputHuman("%s\n", strings.Join(vals, " "))
		return nil
	}
	return outputJSON(DecodeResponse{Algorithm: algorithm, Length: len(v), Values: v})
}
