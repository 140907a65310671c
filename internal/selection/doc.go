// SPDX-License-Identifier: MPL-2.0

// Package selection resolves the hash and crypto algorithm choices that
// parameterize the algorithm-dependent modules of the workspace.
//
// Both algorithms accept either their bare name ("sha3", "ed25519") or the
// cargo feature name used on the command line ("sha3hash"). Empty input
// resolves to the defaults (sha3, secp256k1). Anything else is a ConfigError.
package selection
