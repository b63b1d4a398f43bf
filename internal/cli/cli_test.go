package cli

import (
	"os"
	"testing"
)

func TestDecodeKeyHexPrefix(t *testing.T) {
	got, err := decodeKey("0x0102ff")
	if err != nil {
		t.Fatalf("decodeKey: %v", err)
	}
	want := []byte{0x01, 0x02, 0xff}
	if len(got) != len(want) {
		t.Fatalf("decodeKey = %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("decodeKey = %x, want %x", got, want)
		}
	}
}

func TestDecodeKeyRaw(t *testing.T) {
	got, err := decodeKey("plainpassword")
	if err != nil {
		t.Fatalf("decodeKey: %v", err)
	}
	if string(got) != "plainpassword" {
		t.Fatalf("decodeKey = %q, want %q", got, "plainpassword")
	}
}

func TestDecodeKeyInvalidHex(t *testing.T) {
	if _, err := decodeKey("0xzz"); err == nil {
		t.Fatal("expected error decoding invalid hex")
	}
}

func TestResolveKeyPrefersKeyfileOverFlagAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/key.txt"
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvKeyVar, "from-env")

	got, err := ResolveKey(path, "from-flag", false)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if string(got) != "from-file" {
		t.Fatalf("ResolveKey = %q, want %q", got, "from-file")
	}
}

func TestResolveKeyPrefersFlagOverEnv(t *testing.T) {
	t.Setenv(EnvKeyVar, "from-env")
	got, err := ResolveKey("", "from-flag", false)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if string(got) != "from-flag" {
		t.Fatalf("ResolveKey = %q, want %q", got, "from-flag")
	}
}

func TestResolveKeyFallsBackToEnv(t *testing.T) {
	t.Setenv(EnvKeyVar, "0x2a2a")
	got, err := ResolveKey("", "", false)
	if err != nil {
		t.Fatalf("ResolveKey: %v", err)
	}
	if len(got) != 2 || got[0] != 0x2a || got[1] != 0x2a {
		t.Fatalf("ResolveKey = %x, want 2a2a", got)
	}
}

func TestVerboseFlagRegistered(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	if flag == nil {
		t.Fatal("expected a --verbose persistent flag on rootCmd")
	}
	if flag.Shorthand != "v" {
		t.Errorf("--verbose shorthand = %q, want %q", flag.Shorthand, "v")
	}
}
