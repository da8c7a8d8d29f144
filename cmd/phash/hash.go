package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var hashWorkers int

var hashCmd = &cobra.Command{
	Use:   "hash <image>...",
	Short: "Print the perceptual hash of each image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHash,
}

func init() {
	hashCmd.Flags().IntVarP(&hashWorkers, "workers", "w", cfg.Workers, "files hashed in parallel")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	var failed int
	for _, r := range hashFiles(args, hashWorkers, newLoader()) {
		if r.Err != nil {
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.Hash, r.Path)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d images could not be hashed", failed, len(args))
	}
	return nil
}
