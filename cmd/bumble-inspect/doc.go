// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

// bumble-inspect decodes a bumble stream and prints it as CBOR
// diagnostic notation. Wrapped streams are unwrapped first using a
// pipeline described in a YAML config; secret material (AEAD key
// material, age identities) is taken from environment variables named
// in the config, never from the config file itself.
package main
