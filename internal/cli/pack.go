package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"enard"

	"github.com/spf13/cobra"
)

func init() {
	packCmd.SilenceErrors = true
	packCmd.SilenceUsage = true
}

var packCmd = &cobra.Command{
	Use:   "pack <input> <output>",
	Short: "Encrypt a file into an Enard container",
	Long: `Pack encrypts input into an Enard container written to output.
Use "-" for input to read from standard input.

Examples:
  enard pack archive.zip archive.enard
  cat data.bin | enard pack - out.enard --key 0xdeadbeef...
  enard pack save.bin save.enard --cipher serpent-ctr --meta level=1`,
	Args: cobra.ExactArgs(2),
	RunE: runPack,
}

var (
	packKeyfile string
	packKey     string
	packCipher  string
	packIVHex   string
	packMeta    []string
	packQuiet   bool
)

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVar(&packKeyfile, "keyfile", "", "read the key from this file")
	packCmd.Flags().StringVar(&packKey, "key", "", "the key, or 0x-prefixed hex")
	packCmd.Flags().StringVar(&packCipher, "cipher", "chacha12", "cipher: chacha12, chacha20, or serpent-ctr")
	packCmd.Flags().StringVar(&packIVHex, "iv", "", "hex-encoded IV, or omit for a random one")
	packCmd.Flags().StringArrayVar(&packMeta, "meta", nil, "metadata entry name=value, may repeat")
	packCmd.Flags().BoolVarP(&packQuiet, "quiet", "q", false, "suppress progress output")
}

func runPack(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	key, err := ResolveKey(packKeyfile, packKey, true)
	if err != nil {
		return err
	}

	var meta []enard.MetaEntry
	for _, m := range packMeta {
		name, value, ok := strings.Cut(m, "=")
		if !ok {
			return fmt.Errorf("--meta %q must be in the form name=value", m)
		}
		meta = append(meta, enard.MetaEntry{Name: []byte(name), Value: []byte(value)})
	}

	opts := enard.WriteOptions{CipherName: packCipher, Metadata: meta}
	if packIVHex != "" {
		iv, err := hex.DecodeString(strings.TrimPrefix(packIVHex, "0x"))
		if err != nil {
			return fmt.Errorf("decoding --iv: %w", err)
		}
		opts.IVMode = enard.IVExplicit
		opts.IV = iv
	}

	var input io.Reader
	var inputSize int64
	if inputPath == "-" {
		input = os.Stdin
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		input = f
		if info, err := f.Stat(); err == nil {
			inputSize = info.Size()
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	reporter := NewReporter(packQuiet)
	globalReporter = reporter

	w, err := enard.NewWriter(out, key, opts)
	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	pr := newProgressReader(input, reporter, "packing", inputSize)
	n, err := w.WriteAll(pr)
	reporter.Finish()
	if err != nil {
		reporter.PrintError("%v", err)
		_ = os.Remove(outputPath)
		return err
	}
	if err := w.Close(); err != nil {
		reporter.PrintError("%v", err)
		_ = os.Remove(outputPath)
		return err
	}

	reporter.PrintSuccess("packed %s (%d bytes) -> %s", inputPath, n, outputPath)
	return nil
}
