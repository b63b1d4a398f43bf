package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"enard"

	"github.com/spf13/cobra"
)

func init() {
	unpackCmd.SilenceErrors = true
	unpackCmd.SilenceUsage = true
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <input> <output>",
	Short: "Decrypt an Enard container",
	Long: `Unpack decrypts an Enard container from input, writing the
recovered plaintext to output. Use "-" for input to read from standard
input (buffered in memory, since random access is required to verify
the container) or for output to write to standard output.

Examples:
  enard unpack archive.enard archive.zip
  enard unpack save.enard - --verify lazy > save.bin`,
	Args: cobra.ExactArgs(2),
	RunE: runUnpack,
}

var (
	unpackKeyfile string
	unpackKey     string
	unpackVerify  string
	unpackQuiet   bool
)

func init() {
	rootCmd.AddCommand(unpackCmd)
	unpackCmd.Flags().StringVar(&unpackKeyfile, "keyfile", "", "read the key from this file")
	unpackCmd.Flags().StringVar(&unpackKey, "key", "", "the key, or 0x-prefixed hex")
	unpackCmd.Flags().StringVar(&unpackVerify, "verify", "eager", "verification policy: eager or lazy")
	unpackCmd.Flags().BoolVarP(&unpackQuiet, "quiet", "q", false, "suppress progress output")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	key, err := ResolveKey(unpackKeyfile, unpackKey, false)
	if err != nil {
		return err
	}

	var policy enard.VerifyPolicy
	switch unpackVerify {
	case "eager":
		policy = enard.VerifyEager
	case "lazy":
		policy = enard.VerifyLazy
	default:
		return fmt.Errorf("--verify must be eager or lazy, got %q", unpackVerify)
	}

	var src io.ReadSeeker
	if inputPath == "-" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("buffering stdin: %w", err)
		}
		src = bytes.NewReader(buf)
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		src = f
	}

	reporter := NewReporter(unpackQuiet)
	globalReporter = reporter

	r, err := enard.NewReader(src, key, enard.ReadOptions{Verify: policy})
	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}
	defer r.Close()

	if policy == enard.VerifyLazy {
		if err := r.Verify(); err != nil {
			reporter.PrintError("%v", err)
			return err
		}
	}

	var out io.Writer
	if outputPath == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	pr := newProgressReader(r, reporter, "unpacking", r.DataSize())
	n, err := io.Copy(out, pr)
	reporter.Finish()
	if err != nil {
		reporter.PrintError("%v", err)
		if outputPath != "-" {
			_ = os.Remove(outputPath)
		}
		return err
	}

	reporter.PrintSuccess("unpacked %s (%d bytes) -> %s", inputPath, n, outputPath)
	return nil
}
