package formatter

import "context"

type FakeFormatter struct {
	response string
	err      error
}

// NewFake returns a Formatter replaying a canned model response. The
// response goes through the same marker stripping as the real client.
func NewFake(response string, err error) *FakeFormatter {
	return &FakeFormatter{response: response, err: err}
}

func (f *FakeFormatter) Format(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return stripMarker(f.response), nil
}
