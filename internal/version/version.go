// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of sheetlex.
const Current = "0.1.0"

// ServerCurrent is the string representing the current version of the
// sheetlex highlighting server.
const ServerCurrent = "0.1.0"

// Grammar is the revision of the Sheet grammar rule set. It changes whenever
// a change to the rules can give different tokens for the same text, so that
// stored sessions tokenized under an older revision can be re-tokenized.
const Grammar = "2"
