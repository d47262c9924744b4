// Package beep plays short UI cues around a dictation session.
package beep

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Record-start cue: high pitch, snappy
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Record-stop cue: lower pitch, a bit longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error cue: low double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)
