package encoder

import (
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWav writes mono 16-bit PCM samples as an uncompressed WAV stream.
// The writer must be seekable so the encoder can patch the RIFF header on close.
func WriteWav(w io.WriteSeeker, samples []int16) error {
	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: BitsPerSample,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	enc := wav.NewEncoder(w, SampleRate, BitsPerSample, Channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

// WriteTemp writes samples to a transient WAV file and returns its path.
// The caller removes the file once transcription is done.
func WriteTemp(samples []int16) (string, error) {
	f, err := os.CreateTemp("", "eqvox_*.wav")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	if err := WriteWav(f, samples); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
