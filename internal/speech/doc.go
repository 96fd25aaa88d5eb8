// Package speech transcribes a video's audio track with whisper.cpp, the
// last tier of caption extraction.
package speech
