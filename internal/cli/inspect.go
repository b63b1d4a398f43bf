package cli

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"enard/internal/enarderrors"
	"enard/internal/header"

	"github.com/spf13/cobra"
)

func init() {
	inspectCmd.SilenceErrors = true
	inspectCmd.SilenceUsage = true
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Print an Enard container's header without decrypting it",
	Long: `Inspect reads only the fixed prefix and plaintext header of an
Enard container — version, sizes, cipher name, IV length, and
metadata — without requiring the key, since the header carries no
secret material.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	var magicBuf [6]byte
	if _, err := io.ReadFull(f, magicBuf[:]); err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if magicBuf != header.Magic {
		return enarderrors.ErrBadMagic
	}

	var verBuf [2]byte
	if _, err := io.ReadFull(f, verBuf[:]); err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	version := binary.LittleEndian.Uint16(verBuf[:])

	var hBuf [4]byte
	if _, err := io.ReadFull(f, hBuf[:]); err != nil {
		return fmt.Errorf("reading header size: %w", err)
	}
	h := binary.LittleEndian.Uint32(hBuf[:])

	var dBuf [8]byte
	if _, err := io.ReadFull(f, dBuf[:]); err != nil {
		return fmt.Errorf("reading data size: %w", err)
	}
	d := binary.LittleEndian.Uint64(dBuf[:])

	if version != header.CurrentVersion {
		return &enarderrors.UnsupportedVersionError{Version: version}
	}

	rawHeader := make([]byte, h)
	if _, err := io.ReadFull(f, rawHeader); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	hdr, err := header.Parse(rawHeader)
	if err != nil {
		return err
	}

	fmt.Printf("version:      %d\n", version)
	fmt.Printf("header size:  %d bytes\n", h)
	fmt.Printf("data size:    %d bytes\n", d)
	fmt.Printf("cipher:       %s\n", hdr.CipherName)
	fmt.Printf("iv length:    %d bytes\n", len(hdr.IV))
	if len(hdr.Metadata) == 0 {
		fmt.Println("metadata:     (none)")
	} else {
		fmt.Println("metadata:")
		for _, m := range hdr.Metadata {
			fmt.Printf("  %s = %s\n", m.Name, m.Value)
		}
	}
	return nil
}
