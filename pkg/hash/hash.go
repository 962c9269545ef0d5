package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ZeroTx is the chain seed for a wallet that has no transactions yet.
const ZeroTx = "0000000000000000000000000000000000000000000000000000000000000000"

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ChainTx derives the id of a ledger transaction from the wallet's current
// chain head and the material fields of the transfer. A retried transfer with
// the same intent against an unchanged wallet produces the same id, which is
// what makes retries safe to detect.
//
// The canonical tuple is "<lastTx> <sender> <receiver> <balanceBefore> <delta>".
// Clients dedupe on this value, so the format must not change.
func ChainTx(lastTx string, senderID, receiverID, balanceBefore, delta int64) string {
	return SHA256Hex(fmt.Sprintf("%s %d %d %d %d", lastTx, senderID, receiverID, balanceBefore, delta))
}

// Fingerprint returns a short, irreversible hash prefix used for view
// deduplication keys. Raw user agent / address data never leaves the process.
func Fingerprint(input string) string {
	return SHA256Hex(input)[:16]
}
