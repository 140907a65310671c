// SPDX-License-Identifier: MPL-2.0

package selection

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// HashSHA3 selects the Keccak/SHA3 hash backend.
	HashSHA3 HashAlgorithm = "sha3"
	// HashBlake2b selects the BLAKE2b hash backend.
	HashBlake2b HashAlgorithm = "blake2b"
	// HashSM3 selects the SM3 hash backend.
	HashSM3 HashAlgorithm = "sm3"

	// CryptoSecp256k1 selects the secp256k1 signature backend.
	CryptoSecp256k1 CryptoAlgorithm = "secp256k1"
	// CryptoEd25519 selects the ed25519 signature backend.
	CryptoEd25519 CryptoAlgorithm = "ed25519"
	// CryptoSM2 selects the SM2 signature backend.
	CryptoSM2 CryptoAlgorithm = "sm2"

	// DefaultHash is used when no hash algorithm is given.
	DefaultHash = HashSHA3
	// DefaultCrypto is used when no crypto algorithm is given.
	DefaultCrypto = CryptoSecp256k1

	// hashFeatureSuffix is appended to a hash algorithm to form its cargo feature.
	hashFeatureSuffix = "hash"
)

var (
	// ErrInvalidHashAlgorithm is the sentinel wrapped by InvalidHashAlgorithmError.
	ErrInvalidHashAlgorithm = errors.New("invalid hash algorithm")
	// ErrInvalidCryptoAlgorithm is the sentinel wrapped by InvalidCryptoAlgorithmError.
	ErrInvalidCryptoAlgorithm = errors.New("invalid crypto algorithm")
	// ErrConfig is the sentinel wrapped by ConfigError.
	ErrConfig = errors.New("configuration error")

	hashAlgorithms   = []HashAlgorithm{HashSHA3, HashBlake2b, HashSM3}
	cryptoAlgorithms = []CryptoAlgorithm{CryptoSecp256k1, CryptoEd25519, CryptoSM2}
)

type (
	// HashAlgorithm names a hash backend.
	HashAlgorithm string

	// CryptoAlgorithm names a signature backend.
	CryptoAlgorithm string

	// Selection is a resolved pair of algorithms. It is a value type and is
	// never modified after Resolve returns it.
	Selection struct {
		Hash   HashAlgorithm
		Crypto CryptoAlgorithm
	}

	// InvalidHashAlgorithmError is returned when a HashAlgorithm is not recognized.
	// It wraps ErrInvalidHashAlgorithm for errors.Is() compatibility.
	InvalidHashAlgorithmError struct {
		Value HashAlgorithm
	}

	// InvalidCryptoAlgorithmError is returned when a CryptoAlgorithm is not recognized.
	// It wraps ErrInvalidCryptoAlgorithm for errors.Is() compatibility.
	InvalidCryptoAlgorithmError struct {
		Value CryptoAlgorithm
	}

	// ConfigError reports an invalid user-supplied option detected before any
	// module runs. Option is the name of the option ("action", "hash", "crypto").
	ConfigError struct {
		Option string
		Value  string
		Err    error
	}
)

// Error implements the error interface.
func (e *InvalidHashAlgorithmError) Error() string {
	return fmt.Sprintf("invalid hash algorithm %q (valid: %s)", e.Value, joinValues(hashAlgorithms))
}

// Unwrap returns ErrInvalidHashAlgorithm for errors.Is() compatibility.
func (e *InvalidHashAlgorithmError) Unwrap() error { return ErrInvalidHashAlgorithm }

// Error implements the error interface.
func (e *InvalidCryptoAlgorithmError) Error() string {
	return fmt.Sprintf("invalid crypto algorithm %q (valid: %s)", e.Value, joinValues(cryptoAlgorithms))
}

// Unwrap returns ErrInvalidCryptoAlgorithm for errors.Is() compatibility.
func (e *InvalidCryptoAlgorithmError) Unwrap() error { return ErrInvalidCryptoAlgorithm }

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Option, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Option, e.Value)
}

// Is reports ErrConfig so callers can classify any ConfigError without a type switch.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Unwrap returns the underlying validation error.
func (e *ConfigError) Unwrap() error { return e.Err }

// IsValid returns whether the HashAlgorithm is one of the known backends.
func (h HashAlgorithm) IsValid() (bool, []error) {
	for _, known := range hashAlgorithms {
		if h == known {
			return true, nil
		}
	}
	return false, []error{&InvalidHashAlgorithmError{Value: h}}
}

// Feature returns the cargo feature that enables this hash backend.
func (h HashAlgorithm) Feature() string { return string(h) + hashFeatureSuffix }

// String returns the algorithm name.
func (h HashAlgorithm) String() string { return string(h) }

// IsValid returns whether the CryptoAlgorithm is one of the known backends.
func (c CryptoAlgorithm) IsValid() (bool, []error) {
	for _, known := range cryptoAlgorithms {
		if c == known {
			return true, nil
		}
	}
	return false, []error{&InvalidCryptoAlgorithmError{Value: c}}
}

// Feature returns the cargo feature that enables this crypto backend.
func (c CryptoAlgorithm) Feature() string { return string(c) }

// String returns the algorithm name.
func (c CryptoAlgorithm) String() string { return string(c) }

// Default returns the selection used when the user gives no algorithms.
func Default() Selection {
	return Selection{Hash: DefaultHash, Crypto: DefaultCrypto}
}

// String renders the selection as "hash/crypto".
func (s Selection) String() string {
	return fmt.Sprintf("%s/%s", s.Hash, s.Crypto)
}

// Resolve validates the user-supplied algorithm names and applies defaults for
// empty values. Names may be given with or without the "hash" feature suffix
// for hash algorithms.
func Resolve(hash, crypto string) (Selection, error) {
	sel := Default()

	if hash = strings.TrimSpace(hash); hash != "" {
		h := HashAlgorithm(strings.TrimSuffix(hash, hashFeatureSuffix))
		if valid, errs := h.IsValid(); !valid {
			return Selection{}, &ConfigError{Option: "hash", Value: hash, Err: errs[0]}
		}
		sel.Hash = h
	}

	if crypto = strings.TrimSpace(crypto); crypto != "" {
		c := CryptoAlgorithm(crypto)
		if valid, errs := c.IsValid(); !valid {
			return Selection{}, &ConfigError{Option: "crypto", Value: crypto, Err: errs[0]}
		}
		sel.Crypto = c
	}

	return sel, nil
}

// HashAlgorithms returns the known hash backends in declaration order.
func HashAlgorithms() []HashAlgorithm {
	return append([]HashAlgorithm(nil), hashAlgorithms...)
}

// CryptoAlgorithms returns the known crypto backends in declaration order.
func CryptoAlgorithms() []CryptoAlgorithm {
	return append([]CryptoAlgorithm(nil), cryptoAlgorithms...)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
