package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	ErrAlreadyArmed = errors.New("recorder already armed")
	ErrNotArmed     = errors.New("recorder not armed")
)

// Recorder accumulates microphone samples between Arm and Disarm.
// Frames arrive on the capture device's own thread; the buffer and armed
// flag are guarded by a mutex so the UI thread can disarm safely.
type Recorder struct {
	capture CaptureDevice

	mu      sync.Mutex
	armed   bool
	samples []int16
	started time.Time
	level   float64
}

func NewRecorder(capture CaptureDevice) *Recorder {
	return &Recorder{capture: capture}
}

// Arm starts the capture stream with a fresh buffer. It returns
// ErrAlreadyArmed if a recording session is already open, and the device
// error if the stream cannot start (in which case the recorder stays
// disarmed).
func (r *Recorder) Arm() error {
	r.mu.Lock()
	if r.armed {
		r.mu.Unlock()
		return ErrAlreadyArmed
	}
	r.armed = true
	r.samples = nil
	r.started = time.Now()
	r.level = 0
	r.mu.Unlock()

	r.capture.SetCallback(r.appendFrames)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.mu.Lock()
		r.armed = false
		r.mu.Unlock()
		return fmt.Errorf("starting capture: %w", err)
	}
	return nil
}

// Disarm stops the stream and hands off the accumulated buffer. The
// returned slice is not touched by the recorder afterwards; a subsequent
// Arm starts empty.
func (r *Recorder) Disarm() ([]int16, error) {
	r.mu.Lock()
	if !r.armed {
		r.mu.Unlock()
		return nil, ErrNotArmed
	}
	r.mu.Unlock()

	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	r.armed = false
	samples := r.samples
	r.samples = nil
	r.level = 0
	r.mu.Unlock()
	return samples, nil
}

func (r *Recorder) appendFrames(data []byte, frameCount uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return
	}

	var sumSquares float64
	n := len(data) / 2
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(binary.LittleEndian.Uint16(data[i:]))
		r.samples = append(r.samples, s)
		normalized := float64(s) / 32768.0
		sumSquares += normalized * normalized
	}
	if n > 0 {
		r.level = math.Sqrt(sumSquares / float64(n))
	}
}

func (r *Recorder) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// Elapsed returns how long the current session has been recording,
// zero when disarmed.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return 0
	}
	return time.Since(r.started)
}

// Level returns the RMS of the most recently delivered frame, in [0, 1].
func (r *Recorder) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}
