// Package media inspects video containers and pulls frames, audio and
// embedded subtitle streams out of them with ffprobe and ffmpeg.
//
// A run calls Inspect once and hands the resulting Asset to the other
// helpers. They fail softly: HasEmbeddedSubtitles reports a reason instead
// of an error and CaptureFrame returns an empty path. ExtractAudio returns
// an explicit error because its caller cannot continue without audio.
package media
