package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/turtletowerz/phash/luma"
)

var (
	version = "0.1.0"

	cfg        = loadConfig()
	verbose    bool
	logLevel   string
	autoOrient bool
	log        = logrus.NewEntry(logrus.StandardLogger())
)

var rootCmd = &cobra.Command{
	Use:   "phash",
	Short: "DCT perceptual hashes of images",
	Long: `phash computes 64 bit DCT perceptual hashes of image files and compares
them by Hamming distance. Visually similar images give hashes a few bits apart.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().BoolVar(&autoOrient, "auto-orient", false, "apply JPEG EXIF orientation before hashing")
	rootCmd.SetVersionTemplate(fmt.Sprintf("phash %s (%s/%s, %s)\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version()))
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := logLevel
	if verbose {
		level = "debug"
	}

	l, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}

	log = l.WithField("prefix", "phash")
	return nil
}

func newLoader() *luma.Loader {
	return &luma.Loader{AutoOrient: autoOrient, Log: log}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
