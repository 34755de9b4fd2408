// SPDX-License-Identifier: MPL-2.0

// Package config loads wotmodpack settings using Viper with CUE as the file format.
//
// Settings are layered, lowest precedence first: built-in defaults, the CUE
// config file, WOTMODPACK_* environment variables (a .env file in the working
// directory is loaded first and never overrides variables already set), and
// finally CLI flags applied by the cmd package.
//
// The config file is looked up at the --config path if given, then at
// <user config dir>/wotmodpack/config.cue, then at ./config.cue. Files are
// validated against the embedded #Config schema (config_schema.cue).
package config
