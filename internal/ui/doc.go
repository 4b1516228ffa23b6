// Package ui provides semantic text formatting for CLI output.
//
// Formatters carry meaning (Success, Error, Highlight) rather than raw
// colors, and degrade to plain-text decorations when color is disabled
// via NO_COLOR or terminal detection.
package ui
