package transcriber

import "context"

type FakeTranscriber struct {
	text string
	err  error
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(_ context.Context, _ Clip) (*Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Text: f.text, Duration: 1.0}, nil
}
