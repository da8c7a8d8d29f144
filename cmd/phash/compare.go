package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/turtletowerz/phash"
	"github.com/turtletowerz/phash/luma"
)

var compareThreshold int

var compareCmd = &cobra.Command{
	Use:   "compare <image|hash> <image|hash>",
	Short: "Print the distance between two images or hashes",
	Long: `Each argument is either an image file or a 16 digit hexadecimal hash as
printed by "phash hash". Existing files take precedence over hashes.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntVarP(&compareThreshold, "threshold", "t", cfg.Threshold, "max distance reported as similar")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	h := phash.New()
	l := newLoader()

	a, err := resolveHash(h, l, args[0])
	if err != nil {
		return err
	}
	b, err := resolveHash(h, l, args[1])
	if err != nil {
		return err
	}

	d := a.Distance(b)
	verdict := "different"
	if d <= compareThreshold {
		verdict = "similar"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", d, verdict)
	return nil
}

func resolveHash(h *phash.Hasher, l *luma.Loader, arg string) (phash.Hash, error) {
	if _, err := os.Stat(arg); err != nil {
		if hash, perr := phash.ParseHash(arg); perr == nil {
			return hash, nil
		}
	}

	f, err := hashFile(h, l, arg)
	return f.Hash, err
}
