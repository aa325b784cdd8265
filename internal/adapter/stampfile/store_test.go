package stampfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestStampPath(t *testing.T) {
	got := StampPath("/var/cache/pkgfetch/Packages.gz")
	want := "/var/cache/pkgfetch/Packages.gz" + Suffix
	if got != want {
		t.Errorf("StampPath() = %q, want %q", got, want)
	}
}

func TestStore_WriteThenMatches(t *testing.T) {
	// Lengths straddle the comparison block size: empty, shorter than one
	// block, exact single and double blocks, and one byte either side.
	tests := []struct {
		name  string
		stamp string
	}{
		{name: "empty", stamp: ""},
		{name: "single byte", stamp: "a"},
		{name: "one below block", stamp: strings.Repeat("x", 9)},
		{name: "exact block", stamp: strings.Repeat("x", 10)},
		{name: "one above block", stamp: strings.Repeat("x", 11)},
		{name: "one below two blocks", stamp: strings.Repeat("y", 19)},
		{name: "exact two blocks", stamp: strings.Repeat("y", 20)},
		{name: "long marker", stamp: `686897696a7c876b7e-a1b2c3d4e5f6`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(zap.NewNop())
			cachePath := filepath.Join(t.TempDir(), "index")

			if err := store.Write(cachePath, tt.stamp); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !store.Matches(cachePath, tt.stamp) {
				t.Errorf("Matches() = false after Write(%q), want true", tt.stamp)
			}
		})
	}
}

func TestStore_Mismatch(t *testing.T) {
	tests := []struct {
		name      string
		persisted string
		candidate string
	}{
		{
			name:      "different content same length",
			persisted: "abc",
			candidate: "abd",
		},
		{
			name:      "candidate one byte short of block",
			persisted: strings.Repeat("x", 10),
			candidate: strings.Repeat("x", 9),
		},
		{
			name:      "candidate one byte past block",
			persisted: strings.Repeat("x", 10),
			candidate: strings.Repeat("x", 10) + "x",
		},
		{
			name:      "persisted one byte short of candidate",
			persisted: "abcde",
			candidate: "abcdef",
		},
		{
			name:      "persisted longer within block",
			persisted: "abcdef",
			candidate: "abcde",
		},
		{
			name:      "differs in second block",
			persisted: strings.Repeat("x", 10) + "aaa",
			candidate: strings.Repeat("x", 10) + "aab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(zap.NewNop())
			cachePath := filepath.Join(t.TempDir(), "index")

			if err := store.Write(cachePath, tt.persisted); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if store.Matches(cachePath, tt.candidate) {
				t.Errorf("Matches(%q) = true with persisted %q, want false",
					tt.candidate, tt.persisted)
			}
		})
	}
}

func TestStore_MatchesMissingStampFile(t *testing.T) {
	store := New(zap.NewNop())
	cachePath := filepath.Join(t.TempDir(), "index")

	if store.Matches(cachePath, "abc") {
		t.Error("Matches() = true with no stamp file, want false")
	}
}

func TestStore_WriteOverwritesPriorStamp(t *testing.T) {
	store := New(zap.NewNop())
	cachePath := filepath.Join(t.TempDir(), "index")

	if err := store.Write(cachePath, "first-marker-value"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := store.Write(cachePath, "second"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !store.Matches(cachePath, "second") {
		t.Error("Matches(new stamp) = false after overwrite, want true")
	}
	if store.Matches(cachePath, "first-marker-value") {
		t.Error("Matches(old stamp) = true after overwrite, want false")
	}

	// The stamp file holds the raw marker bytes with no framing.
	content, err := os.ReadFile(StampPath(cachePath))
	if err != nil {
		t.Fatalf("failed to read stamp file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("stamp file content = %q, want %q", content, "second")
	}
}

func TestStore_WriteFailsOnUnwritablePath(t *testing.T) {
	store := New(zap.NewNop())
	cachePath := filepath.Join(t.TempDir(), "missing-dir", "index")

	if err := store.Write(cachePath, "abc"); err == nil {
		t.Error("Write() error = nil for unwritable path, want error")
	}
}
