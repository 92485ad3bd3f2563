// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a cryptographically random, URL-safe opaque
// string built from byteLength random bytes.
//
// # Collision Probability
//
// At the 32-byte length used for refresh tokens the collision probability is
// negligible; a duplicate value violating the store's primary key would
// indicate a broken entropy source and surfaces as a storage error.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
