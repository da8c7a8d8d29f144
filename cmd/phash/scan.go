package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	scanWorkers   int
	scanThreshold int
	scanJSON      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Find duplicate and near-duplicate images in a directory",
	Long: `Walks the directory tree (skipping hidden directories), hashes every image
and reports byte-identical files and pairs whose hashes differ in at most
--threshold bits.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", cfg.Workers, "files hashed in parallel")
	scanCmd.Flags().IntVarP(&scanThreshold, "threshold", "t", cfg.Threshold, "max distance reported as similar")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(scanCmd)
}

type scanReport struct {
	Files      []fileHash    `json:"files"`
	Failed     int           `json:"failed"`
	Duplicates [][]string    `json:"duplicates"`
	Similar    []similarPair `json:"similar"`
}

func scan(dir string, workers, threshold int) (*scanReport, error) {
	paths, err := collectImages(dir)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", dir).Infof("found %d images", len(paths))

	r := &scanReport{Files: make([]fileHash, 0, len(paths))}
	all := hashFiles(paths, workers, newLoader())
	for _, f := range all {
		if f.Err != nil {
			r.Failed++
			continue
		}
		r.Files = append(r.Files, f)
	}

	if len(paths) > 0 && r.Failed == len(paths) {
		return nil, errors.Errorf("all %d images failed to hash", len(paths))
	}

	r.Duplicates = exactDuplicates(r.Files)
	r.Similar = similarPairs(r.Files, threshold)
	return r, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	r, err := scan(args[0], scanWorkers, scanThreshold)
	if err != nil {
		return err
	}
	log.Infof("scan finished in %s", time.Since(start).Round(time.Millisecond))

	if scanJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	printReport(cmd.OutOrStdout(), r)
	return nil
}

func printReport(w io.Writer, r *scanReport) {
	fmt.Fprintf(w, "%d images hashed", len(r.Files))
	if r.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", r.Failed)
	}
	fmt.Fprintln(w)

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "\nIdentical files (%d groups):\n", len(r.Duplicates))
		for _, g := range r.Duplicates {
			for _, p := range g {
				fmt.Fprintf(w, "  %s\n", p)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\nSimilar images (%d pairs):\n", len(r.Similar))
	for _, p := range r.Similar {
		fmt.Fprintf(w, "  %2d  %s  %s\n", p.Distance, p.A, p.B)
	}
}
