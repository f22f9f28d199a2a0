// Package ui provides semantic text formatting for CLI output.
//
// Formatters pair a color (when the terminal supports it) with a plain-text
// fallback decoration, so output stays readable with NO_COLOR set or when
// piped. Use the package-level formatters rather than raw color calls:
//
//	msg := ui.Success.Sprint("✓") + " Key added for " + ui.Highlight.Sprint(name)
package ui
