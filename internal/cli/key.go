package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// EnvKeyVar is the environment variable holding the container key when
// neither --keyfile nor --key is given.
const EnvKeyVar = "ENARD_KEY"

// ResolveKey implements the key acquisition order: --keyfile, --key,
// ENARD_KEY, then an interactive prompt if stdin is a terminal. confirm
// controls whether the interactive fallback asks for confirmation (packing)
// or not (unpacking).
func ResolveKey(keyfile, keyFlag string, confirm bool) ([]byte, error) {
	switch {
	case keyfile != "":
		raw, err := os.ReadFile(keyfile)
		if err != nil {
			return nil, fmt.Errorf("reading keyfile %s: %w", keyfile, err)
		}
		return decodeKey(strings.TrimRight(string(raw), "\r\n"))
	case keyFlag != "":
		return decodeKey(keyFlag)
	}
	if env, ok := os.LookupEnv(EnvKeyVar); ok {
		return decodeKey(env)
	}
	if !isTerminal() {
		return nil, fmt.Errorf("no key supplied: use --key, --keyfile, or set %s", EnvKeyVar)
	}
	key, err := ReadKeyInteractive(confirm)
	if err != nil {
		return nil, err
	}
	return decodeKey(key)
}

// decodeKey applies the "0x"-prefix hex convention: a key beginning with
// "0x" is decoded as hex, otherwise it is used as raw bytes.
func decodeKey(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("decoding hex key: %w", err)
		}
		return b, nil
	}
	return []byte(s), nil
}
