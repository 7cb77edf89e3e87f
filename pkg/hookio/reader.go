package hookio

import (
	"io"
	"time"
)

// maxEventSize caps the payload read from the host. Real events are a
// few hundred bytes; anything near the cap is hostile or broken.
const maxEventSize = 1 << 20 // 1MB

// Read reads one event payload from r, waiting at most timeout for the
// host to deliver it. A timeout returns (nil, nil): the host sent
// nothing, and the engine must proceed as if no event occurred rather
// than hang. Decoding failures return (nil, *ParseError).
//
// The read runs in a goroutine that is abandoned on timeout. That is
// deliberate: hook invocations are single-shot processes that exit
// immediately after deciding, so an abandoned stdin read never outlives
// anything that matters.
func Read(r io.Reader, timeout time.Duration) (*Event, error) {
	type readResult struct {
		data []byte
		err  error
	}

	ch := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(r, maxEventSize))
		ch <- readResult{data: data, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, &ParseError{Reason: "unreadable", Err: res.err}
		}
		return Parse(res.data)
	case <-timer.C:
		return nil, nil
	}
}
