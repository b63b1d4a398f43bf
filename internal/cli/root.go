// Package cli implements the enard command-line tool: pack, unpack, and
// inspect subcommands over the Enard container codec.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"enard/internal/log"

	"github.com/spf13/cobra"
)

// Version is set by main.go.
var Version = "dev"

// verbose is set by the --verbose/-v persistent flag; see PersistentPreRunE.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "enard",
	Short: "Pack and unpack Enard containers",
	Long: `enard is a command-line tool for the Enard encryption container
format: a single-payload authenticated stream cipher container with a
plaintext-readable header, suitable for wrapping opaque byte payloads
such as zip archives.

The encryption key is supplied via --keyfile, --key, or the ENARD_KEY
environment variable, in that order of precedence. If none are given
and standard input is a terminal, the key is read interactively. A key
value beginning with "0x" is decoded as hex; otherwise it is used as
raw bytes.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.EnableStderrLogging(log.LevelDebug)
		}
		return nil
	},
}

// globalReporter lets the SIGINT/SIGTERM handler cancel an in-flight pack
// or unpack without either subcommand knowing about signals directly.
var globalReporter *Reporter

// Execute runs the enard CLI, returning any error from the selected
// subcommand.
func Execute(version string) error {
	Version = version
	rootCmd.Version = version

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\ncancelling...")
		} else {
			os.Exit(1)
		}
	}()

	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}
