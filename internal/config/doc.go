// SPDX-License-Identifier: MPL-2.0

// Package config handles citaci configuration using Viper with CUE as the file format.
//
// Configuration is optional. When no --config flag is given the loader looks
// for citaci.cue in the workspace root, then for config.cue in the user
// configuration directory ($XDG_CONFIG_HOME/citaci on Linux). Files are
// validated against the embedded config_schema.cue before being merged over
// the defaults. CITACI_* environment variables override both.
package config
