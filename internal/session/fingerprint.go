// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters shown.
const fingerprintLen = 12

// Fingerprint identifies a token in output without revealing it.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])[:fingerprintLen]
}
