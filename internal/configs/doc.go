// Package configs manages Satchel's user and vault configuration.
//
// User configuration lives in the OS config directory as TOML
// (~/.config/satchel/config.toml on Linux) and carries the user's UUID,
// display email, backend URL, and preferred derivation version. Vault
// settings are resolved from the working directory by locating the
// enclosing .satchel/ data directory.
//
// Nothing here is secret: secrets and key material are never written to
// configuration.
package configs
