// Package caption holds the time-coded transcript model shared by every
// extraction tier, and the SRT codec used to persist it.
//
// A Track is built once per run by exactly one tier and is not mutated
// afterwards. Entries in a track are ordered by start time, satisfy
// Start < End, and are numbered 1..N without gaps.
package caption
