package encoding

import (
	"bytes"
	"testing"
)

func TestUTF16RoundTrip(t *testing.T) {
	for _, s := range []string{"", "IPC$", "srvsvc", `\\host\ADMIN$`, "café", "共有"} {
		if got := ParseUTF16(UTF16(s)); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestUTF16Null(t *testing.T) {
	b := UTF16Null("AB")
	want := []byte{'A', 0, 'B', 0, 0, 0}
	if !bytes.Equal(b, want) {
		t.Errorf("UTF16Null = %x, want %x", b, want)
	}
	if got := ParseUTF16(b); got != "AB" {
		t.Errorf("ParseUTF16 = %q", got)
	}
}

func TestParseUTF16OddLength(t *testing.T) {
	if got := ParseUTF16([]byte{'A', 0, 'B'}); got != "A" {
		t.Errorf("odd-length input = %q, want trailing byte dropped", got)
	}
}
