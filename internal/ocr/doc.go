// Package ocr detects and extracts burned-in subtitles from video frames.
//
// Text recognition itself is delegated to an external recognizer (tesseract,
// or any command printing JSON lines). The recognizer is reached through a
// Handle that loads it on first use and is closed at the end of a run.
//
// The Classifier decides from a single frame whether burned-in subtitles are
// present; the Engine samples the whole video at a fixed interval and turns
// confident text into timed captions.
package ocr
