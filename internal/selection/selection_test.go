// SPDX-License-Identifier: MPL-2.0

package selection

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	sel, err := Resolve("", "")
	if err != nil {
		t.Fatalf("Resolve(\"\", \"\") returned error: %v", err)
	}
	if sel.Hash != HashSHA3 {
		t.Errorf("Hash = %q, want %q", sel.Hash, HashSHA3)
	}
	if sel.Crypto != CryptoSecp256k1 {
		t.Errorf("Crypto = %q, want %q", sel.Crypto, CryptoSecp256k1)
	}
	if sel != Default() {
		t.Errorf("Resolve defaults = %v, want %v", sel, Default())
	}
}

func TestResolve_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hash, crypto string
		want         Selection
	}{
		{"sha3hash", "secp256k1", Selection{HashSHA3, CryptoSecp256k1}},
		{"blake2bhash", "ed25519", Selection{HashBlake2b, CryptoEd25519}},
		{"sm3hash", "sm2", Selection{HashSM3, CryptoSM2}},
		{"sm3", "", Selection{HashSM3, CryptoSecp256k1}},
		{"", "sm2", Selection{HashSHA3, CryptoSM2}},
		{" blake2b ", " ed25519 ", Selection{HashBlake2b, CryptoEd25519}},
	}

	for _, tt := range tests {
		t.Run(tt.hash+"/"+tt.crypto, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(tt.hash, tt.crypto)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) returned error: %v", tt.hash, tt.crypto, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %v, want %v", tt.hash, tt.crypto, got, tt.want)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		hash       string
		crypto     string
		wantOption string
		wantErr    error
	}{
		{"unknown hash", "rc4", "", "hash", ErrInvalidHashAlgorithm},
		{"uppercase hash", "SHA3HASH", "", "hash", ErrInvalidHashAlgorithm},
		{"bare suffix", "hash", "", "hash", ErrInvalidHashAlgorithm},
		{"unknown crypto", "", "rc4", "crypto", ErrInvalidCryptoAlgorithm},
		{"hash name as crypto", "", "sha3hash", "crypto", ErrInvalidCryptoAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Resolve(tt.hash, tt.crypto)
			if err == nil {
				t.Fatalf("Resolve(%q, %q) returned nil error", tt.hash, tt.crypto)
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error should be *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Option != tt.wantOption {
				t.Errorf("Option = %q, want %q", cfgErr.Option, tt.wantOption)
			}
			if !errors.Is(err, ErrConfig) {
				t.Error("error should match ErrConfig")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error should wrap %v, got %v", tt.wantErr, err)
			}
			offending := tt.hash + tt.crypto
			if !strings.Contains(err.Error(), offending) {
				t.Errorf("error %q should name offending value %q", err.Error(), offending)
			}
		})
	}
}

func TestHashAlgorithm_Feature(t *testing.T) {
	t.Parallel()

	for _, h := range HashAlgorithms() {
		if got, want := h.Feature(), string(h)+"hash"; got != want {
			t.Errorf("%s.Feature() = %q, want %q", h, got, want)
		}
	}
}

func TestCryptoAlgorithm_IsValid(t *testing.T) {
	t.Parallel()

	for _, c := range CryptoAlgorithms() {
		if valid, errs := c.IsValid(); !valid || len(errs) != 0 {
			t.Errorf("%s.IsValid() = %v, %v; want true, nil", c, valid, errs)
		}
	}
	valid, errs := CryptoAlgorithm("").IsValid()
	if valid {
		t.Error("empty CryptoAlgorithm should be invalid")
	}
	if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidCryptoAlgorithm) {
		t.Errorf("errors should wrap ErrInvalidCryptoAlgorithm, got %v", errs)
	}
}
