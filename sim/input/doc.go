// Package input parses and validates the raw text a user submits before it
// reaches the simulation engine.
//
// Two layouts are accepted. A single-car input has exactly three lines:
//
//	10 10
//	1 2 N
//	FFRFFFRRLF
//
// A multi-car input has the field size followed by one block per car (name,
// position and heading, commands). Blank lines between blocks are ignored:
//
//	10 10
//
//	A
//	1 2 N
//	FFRFFFFRRL
//
//	B
//	7 8 W
//	FFLFFFFFFF
//
// Parsing is strict: headings must be N, E, S or W and commands may only use
// L, R and F. Every failure is an *Error whose message is meant to be shown to
// the user as is.
package input
