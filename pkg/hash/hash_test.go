package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestChainTx_KnownValues(t *testing.T) {
	// Pinned vectors: clients dedupe on these ids, so the canonical tuple
	// format must never drift.
	tests := []struct {
		name   string
		lastTx string
		sender int64
		recv   int64
		before int64
		delta  int64
		want   string
	}{
		{
			name:   "first debit on fresh wallet",
			lastTx: ZeroTx,
			sender: 1, recv: 2, before: 100, delta: -50,
			want: "8e668ad2b32e5a8835c99b4f37ec066dddc05e190b843be54edf86e492d026ba",
		},
		{
			name:   "matching credit leg",
			lastTx: ZeroTx,
			sender: 1, recv: 2, before: 40, delta: 50,
			want: "231112572d37a5ac9862aa920f0cc74aeb98e96d574b9691a6a85e68ac8780d7",
		},
		{
			name:   "second link chains off the first",
			lastTx: "8e668ad2b32e5a8835c99b4f37ec066dddc05e190b843be54edf86e492d026ba",
			sender: 1, recv: 2, before: 50, delta: -10,
			want: "b6e4e512a666a5e81969a4f23779a08d639f9c6e482c3b8c2f434575e387b676",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChainTx(tt.lastTx, tt.sender, tt.recv, tt.before, tt.delta)
			if got != tt.want {
				t.Errorf("ChainTx() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChainTx_RetrySameIntent(t *testing.T) {
	// A retried transfer with identical intent against an unchanged wallet
	// must produce the same id — that is what makes retries detectable.
	a := ChainTx(ZeroTx, 7, 9, 1000, -250)
	b := ChainTx(ZeroTx, 7, 9, 1000, -250)
	if a != b {
		t.Error("identical intent should produce identical ids")
	}

	// Any changed field produces a different id.
	if a == ChainTx(ZeroTx, 7, 9, 1000, -251) {
		t.Error("different delta should produce a different id")
	}
	if a == ChainTx(ZeroTx, 7, 9, 999, -250) {
		t.Error("different balance should produce a different id")
	}
	if a == ChainTx(a, 7, 9, 750, -250) {
		t.Error("different chain head should produce a different id")
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("12/34")
	if len(fp) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(fp))
	}
	if fp != Fingerprint("12/34") {
		t.Error("Fingerprint should be deterministic")
	}
	if fp == Fingerprint("12/35") {
		t.Error("different inputs should produce different fingerprints")
	}
}
