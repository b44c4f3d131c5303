// Package cli holds the interactive helpers shared by the command-line tools:
// choosing an image, loading it as a data URL and explaining key failures.
package cli
