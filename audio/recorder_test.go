package audio

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
)

// stubCapture drives the recorder callback by hand.
type stubCapture struct {
	mu       sync.Mutex
	cb       DataCallback
	startErr error
	started  bool
	stopped  bool
}

func (s *stubCapture) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *stubCapture) Stop() { s.stopped = true }

func (s *stubCapture) Close() {}

func (s *stubCapture) SetCallback(cb DataCallback) {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
}

func (s *stubCapture) ClearCallback() {
	s.mu.Lock()
	s.cb = nil
	s.mu.Unlock()
}

func (s *stubCapture) DeviceName() string { return "stub" }

func (s *stubCapture) feed(samples []int16) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb == nil {
		return
	}
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	cb(data, uint32(len(samples)))
}

func TestRecorderOneSecondClip(t *testing.T) {
	stub := &stubCapture{}
	rec := NewRecorder(stub)

	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	// 1 second of audio in device-sized chunks
	const total = 16000
	chunk := make([]int16, 1000)
	for i := range chunk {
		chunk[i] = int16(i - 500)
	}
	for fed := 0; fed < total; fed += len(chunk) {
		stub.feed(chunk)
	}

	samples, err := rec.Disarm()
	if err != nil {
		t.Fatalf("Disarm: %v", err)
	}
	if len(samples) != total {
		t.Errorf("len(samples) = %d, want %d", len(samples), total)
	}
	if !stub.stopped {
		t.Error("capture device not stopped on disarm")
	}
	for i := range 1000 {
		if samples[i] != int16(i-500) {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], i-500)
		}
	}
}

func TestRecorderArmWhileArmed(t *testing.T) {
	rec := NewRecorder(&stubCapture{})
	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := rec.Arm(); !errors.Is(err, ErrAlreadyArmed) {
		t.Errorf("second Arm = %v, want ErrAlreadyArmed", err)
	}
	if _, err := rec.Disarm(); err != nil {
		t.Fatalf("Disarm: %v", err)
	}
}

func TestRecorderDisarmWhileIdle(t *testing.T) {
	rec := NewRecorder(&stubCapture{})
	if _, err := rec.Disarm(); !errors.Is(err, ErrNotArmed) {
		t.Errorf("Disarm = %v, want ErrNotArmed", err)
	}
}

func TestRecorderDeviceErrorStaysDisarmed(t *testing.T) {
	stub := &stubCapture{startErr: errors.New("device busy")}
	rec := NewRecorder(stub)

	if err := rec.Arm(); err == nil {
		t.Fatal("Arm should fail when the device cannot start")
	}
	if rec.Armed() {
		t.Error("recorder armed after failed Arm")
	}
	if stub.cb != nil {
		t.Error("callback left installed after failed Arm")
	}
	// A fresh Arm must work once the device recovers
	stub.startErr = nil
	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm after recovery: %v", err)
	}
}

func TestRecorderFreshBufferPerSession(t *testing.T) {
	stub := &stubCapture{}
	rec := NewRecorder(stub)

	if err := rec.Arm(); err != nil {
		t.Fatal(err)
	}
	stub.feed(make([]int16, 100))
	first, err := rec.Disarm()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 100 {
		t.Fatalf("first session: %d samples, want 100", len(first))
	}

	if err := rec.Arm(); err != nil {
		t.Fatal(err)
	}
	stub.feed(make([]int16, 50))
	second, err := rec.Disarm()
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 50 {
		t.Errorf("second session: %d samples, want 50", len(second))
	}
}

func TestRecorderIgnoresFramesWhileDisarmed(t *testing.T) {
	stub := &stubCapture{}
	rec := NewRecorder(stub)

	if err := rec.Arm(); err != nil {
		t.Fatal(err)
	}
	cb := stub.cb
	stub.feed(make([]int16, 10))
	if _, err := rec.Disarm(); err != nil {
		t.Fatal(err)
	}

	// A straggler frame after disarm must not touch the next session.
	cb(make([]byte, 20), 10)

	if err := rec.Arm(); err != nil {
		t.Fatal(err)
	}
	samples, err := rec.Disarm()
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 0 {
		t.Errorf("stale frames leaked into new session: %d samples", len(samples))
	}
}

func TestRecorderLevel(t *testing.T) {
	stub := &stubCapture{}
	rec := NewRecorder(stub)

	if err := rec.Arm(); err != nil {
		t.Fatal(err)
	}
	loud := make([]int16, 100)
	for i := range loud {
		loud[i] = 16384
	}
	stub.feed(loud)

	if lvl := rec.Level(); lvl < 0.4 || lvl > 0.6 {
		t.Errorf("Level = %f, want ~0.5", lvl)
	}
	if _, err := rec.Disarm(); err != nil {
		t.Fatal(err)
	}
	if lvl := rec.Level(); lvl != 0 {
		t.Errorf("Level after disarm = %f, want 0", lvl)
	}
}
