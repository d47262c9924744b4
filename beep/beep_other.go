//go:build !linux

package beep

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx      *oto.Context
	startBuffer []byte
	endBuffer   []byte
	errorBuffer []byte
	soundOnce   sync.Once
)

func initSound() {
	var err error
	var ready chan struct{}
	otoCtx, ready, err = oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		otoCtx = nil
		return
	}
	<-ready

	startBuffer = toBytes(tone(startFreq, 0.03, startVolume, startDecay))
	endBuffer = toBytes(tone(endFreq, 0.05, endVolume, endDecay))
	errorBuffer = toBytes(doubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay))
}

func toBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

func playBuffer(buffer []byte) {
	if otoCtx == nil || len(buffer) == 0 {
		return
	}
	player := otoCtx.NewPlayer(bytes.NewReader(buffer))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	playBuffer(startBuffer)
}

func PlayEnd() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	playBuffer(endBuffer)
}

func PlayError() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	playBuffer(errorBuffer)
}
