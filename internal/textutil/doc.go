// Package textutil provides the lexical machinery behind title reconciliation:
// canonical-key normalization, token-set similarity scoring, and parsing of
// clock-style duration strings.
//
// Titles arriving from the LMS and the video platform describe the same media
// but disagree on punctuation, case, trailing duration markers ("(12:34)"),
// "(Read Only)" flags, and numeric ID suffixes. Normalize strips that noise
// into a canonical key; TokenSetRatio scores two keys on a 0-100 scale that is
// insensitive to word order and duplication.
package textutil
