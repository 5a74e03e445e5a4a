package app

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Memory-hard on purpose so offline brute force of a
// leaked hash stays expensive.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 4
	argonSaltLen     = 16
	argonKeyLen      = 32
)

// ErrMalformedHash indicates a stored password hash that cannot be parsed.
// It is surfaced as an internal error, never as a credential mismatch, so
// callers cannot probe the stored format.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives an argon2id digest over a fresh random salt and
// encodes it in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt_b64>$<hash_b64>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

// VerifyPassword re-derives the digest with the parameters and salt carried
// in encoded and compares in constant time. A parse failure returns
// ErrMalformedHash; a mismatch returns (false, nil).
func VerifyPassword(encoded, password string) (bool, error) {
	memory, iterations, parallelism, salt, want, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func parsePHC(s string) (memory, iterations uint32, parallelism uint8, salt, hash []byte, err error) {
	parts := strings.Split(s, "$")
	// Leading "$" yields an empty first element.
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	enc := base64.RawStdEncoding
	salt, err = enc.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	hash, err = enc.DecodeString(parts[5])
	if err != nil || len(hash) < 16 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	return memory, iterations, parallelism, salt, hash, nil
}
