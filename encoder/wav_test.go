package encoder

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/wav"
)

func sineSamples(n int, freq float64) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(SampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 16000)
	}
	return samples
}

func TestWriteTempRoundTrip(t *testing.T) {
	samples := sineSamples(SampleRate, 440) // 1 second

	path, err := WriteTemp(samples)
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding wav: %v", err)
	}

	if dec.SampleRate != SampleRate {
		t.Errorf("SampleRate = %d, want %d", dec.SampleRate, SampleRate)
	}
	if dec.NumChans != Channels {
		t.Errorf("NumChans = %d, want %d", dec.NumChans, Channels)
	}
	if dec.BitDepth != BitsPerSample {
		t.Errorf("BitDepth = %d, want %d", dec.BitDepth, BitsPerSample)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i, want := range samples {
		if int16(buf.Data[i]) != want {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want)
		}
	}
}

func TestWriteTempEmpty(t *testing.T) {
	path, err := WriteTemp(nil)
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	defer os.Remove(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Header only, no sample data
	if info.Size() < 44 {
		t.Errorf("file size = %d, want at least 44 header bytes", info.Size())
	}
}
