package buildinfo

import "testing"

func TestShort(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "dev", "unknown"
	if got := Short(); got != "dev" {
		t.Fatalf("Short()=%q want dev", got)
	}
	Commit = "0123456789abcdef"
	if got := Short(); got != "0123456" {
		t.Fatalf("Short()=%q want 0123456", got)
	}
	Version = "v0.3.1"
	if got := Short(); got != "v0.3.1" {
		t.Fatalf("Short()=%q want v0.3.1", got)
	}
}
