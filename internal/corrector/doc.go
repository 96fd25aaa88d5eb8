// Package corrector turns a caption track into a readable transcript: known
// transcription errors are replaced through a substitution table, then the
// entries are punctuated and merged into paragraphs, optionally revised by
// Gemini.
package corrector
