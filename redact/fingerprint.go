package redact

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// FingerprintKeyEnv names the environment variable holding the hex-encoded
// fingerprint key.
const FingerprintKeyEnv = "LOGSAFE_FINGERPRINT_KEY"

// FingerprintKeyFromEnv reads the fingerprint key from the environment.
// Returns nil when the variable is unset or not valid hex, so callers can
// pass the result straight to WithFingerprint and fall back to plain
// deletion.
func FingerprintKeyFromEnv() []byte {
	raw := strings.TrimSpace(os.Getenv(FingerprintKeyEnv))
	if raw == "" {
		return nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) == 0 {
		return nil
	}
	return key
}

// fingerprint derives a short keyed digest of val. The same secret under the
// same key always yields the same tag.
func (r *Redactor) fingerprint(val any) string {
	h, err := blake2b.New256(r.fpKey)
	if err != nil {
		// Key longer than 64 bytes; blake2b rejects it. Degrade to an
		// opaque marker rather than leaking anything.
		return "redacted"
	}
	b, err := json.Marshal(val)
	if err != nil {
		b = fmt.Appendf(nil, "%v", val)
	}
	h.Write(b)
	return "redacted:" + hex.EncodeToString(h.Sum(nil))[:8]
}
