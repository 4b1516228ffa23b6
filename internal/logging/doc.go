// Package logger provides leveled logging for Satchel CLI commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows all messages including debug details
//
// Warnings and errors are always shown on stderr. Commands create a
// logger in their PersistentPreRun and pass it to internal functions.
//
// Nothing in this layer ever logs key material, user secrets, or record
// plaintext, at any verbosity.
package logger
