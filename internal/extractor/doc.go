// Package extractor runs the three caption tiers (embedded stream, burned-in
// OCR, speech) in order and writes the first track that succeeds.
package extractor
