package prompt

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// LineReader hands out at most one line per Read. Readers that buffer on
// their own, like the REPL's scanner and each accessible huh field, can then
// share piped input without one of them swallowing lines meant for the next.
type LineReader struct {
	mu        sync.Mutex
	r         *bufio.Reader
	pending   []byte
	exhausted bool
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

func (l *LineReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		line, err := l.r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			err = nil
		}
		if len(line) == 0 {
			if errors.Is(err, io.EOF) {
				l.exhausted = true
			}
			return 0, err
		}
		l.pending = append(l.pending[:0], line...)
	}

	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// Exhausted reports whether a Read has hit the end of the input.
func (l *LineReader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exhausted
}
