package tier

import "fmt"

// Reason is a stable code describing why a tier succeeded or gave up.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonNoSubtitleStream      Reason = "no_subtitle_stream"
	ReasonProbeFailed           Reason = "probe_failed"
	ReasonFrameUnavailable      Reason = "frame_unavailable"
	ReasonNoBurnedSubtitle      Reason = "no_burned_subtitle"
	ReasonNoDuration            Reason = "no_duration"
	ReasonRecognizerUnavailable Reason = "recognizer_unavailable"
	ReasonRecognitionFailed     Reason = "recognition_failed"
	ReasonAudioUnavailable      Reason = "audio_unavailable"
	ReasonTimeout               Reason = "timeout"
	ReasonCanceled              Reason = "canceled"
	ReasonWriteFailed           Reason = "write_failed"
)

// Outcome is the success flag plus reason code a tier reports.
type Outcome struct {
	OK     bool
	Reason Reason
	Err    error
}

// Success is the Outcome of a tier that produced its track.
func Success() Outcome {
	return Outcome{OK: true}
}

// Fail builds a failed Outcome. The reason is refined from err when err
// carries a more specific marker.
func Fail(reason Reason, err error) Outcome {
	return Outcome{Reason: ReasonFor(err, reason), Err: err}
}

func (o Outcome) String() string {
	if o.OK {
		return "ok"
	}
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Reason, o.Err)
	}
	return string(o.Reason)
}
