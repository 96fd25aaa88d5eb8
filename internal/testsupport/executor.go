// Package testsupport holds fakes shared by package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

// Call records one command invocation.
type Call struct {
	Name string
	Args []string
}

// Flag returns the argument following flag, or "".
func (c Call) Flag(flag string) string {
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == flag {
			return c.Args[i+1]
		}
	}
	return ""
}

// Last returns the final argument, usually the output path.
func (c Call) Last() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// Handler scripts the result of a call.
type Handler func(ctx context.Context, call Call) (string, error)

// FakeExecutor implements executor.Executor by dispatching to Handler.
type FakeExecutor struct {
	Handler Handler
	// Missing names binaries LookPath reports as not installed.
	Missing map[string]bool

	mu    sync.Mutex
	calls []Call
}

var _ executor.Executor = (*FakeExecutor)(nil)

func (f *FakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.Missing[name] {
		return "", fmt.Errorf("command '%s' failed: %w", name, executor.ErrNotInstalled)
	}
	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(ctx, call)
}

func (f *FakeExecutor) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("%w: %s", executor.ErrNotInstalled, name)
	}
	return name, nil
}

// Calls returns every recorded call to name; all calls when name is "".
func (f *FakeExecutor) Calls(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ProbeJSON renders an ffprobe -show_format -show_streams payload.
func ProbeJSON(duration string, codecTypes ...string) string {
	type stream struct {
		Index     int    `json:"index"`
		CodecType string `json:"codec_type"`
	}
	payload := struct {
		Streams []stream          `json:"streams"`
		Format  map[string]string `json:"format"`
	}{Format: map[string]string{"duration": duration, "format_name": "mov,mp4"}}
	for i, t := range codecTypes {
		payload.Streams = append(payload.Streams, stream{Index: i, CodecType: t})
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// WriteOutput writes data to the call's final argument, as ffmpeg would.
func WriteOutput(call Call, data string) error {
	return os.WriteFile(call.Last(), []byte(data), 0644)
}
