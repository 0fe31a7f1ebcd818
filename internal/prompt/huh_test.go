package prompt

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Klingon-tech/avash/internal/command"
)

func TestHuh_NoQuestions(t *testing.T) {
	answers, err := NewHuh().Prompt(context.Background(), nil)
	if err != nil {
		t.Fatalf("Prompt() error: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("answers = %v, want empty", answers)
	}
}

func TestHuh_AccessibleAnswers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		questions []command.Question
		want      command.Answers
	}{
		{
			name:      "answered",
			input:     "node-1\n",
			questions: []command.Question{{Text: "Node ID", Key: "nodeId"}},
			want:      command.Answers{"nodeId": "node-1"},
		},
		{
			name:      "empty keeps default",
			input:     "\n",
			questions: []command.Question{{Text: "Fee", Key: "fee", Default: "2"}},
			want:      command.Answers{"fee": "2"},
		},
		{
			name:  "several fields in order",
			input: "1700000000\n  1702592000 \n\n",
			questions: []command.Question{
				{Text: "Start", Key: "start"},
				{Text: "End", Key: "end"},
				{Text: "Fee", Key: "fee", Default: "2"},
			},
			want: command.Answers{"start": "1700000000", "end": "1702592000", "fee": "2"},
		},
		{
			name:      "secret read as plain line",
			input:     "hunter2\n",
			questions: []command.Question{{Text: "Passphrase", Key: "passphrase", Secret: true}},
			want:      command.Answers{"passphrase": "hunter2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHuh(WithIO(NewLineReader(strings.NewReader(tt.input)), io.Discard), WithAccessible(true))
			got, err := h.Prompt(context.Background(), tt.questions)
			if err != nil {
				t.Fatalf("Prompt() error: %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("answer %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestHuh_AccessibleInputEnds(t *testing.T) {
	h := NewHuh(WithIO(NewLineReader(strings.NewReader("only-one\n")), io.Discard), WithAccessible(true))
	_, err := h.Prompt(context.Background(), []command.Question{
		{Text: "Start", Key: "start"},
		{Text: "End", Key: "end"},
	})
	if !errors.Is(err, command.ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}

func TestHuh_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHuh(WithIO(NewLineReader(strings.NewReader("x\n")), io.Discard), WithAccessible(true))
	_, err := h.Prompt(ctx, []command.Question{{Text: "Node ID", Key: "nodeId"}})
	if !errors.Is(err, command.ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}

func TestLineReader_OneLinePerRead(t *testing.T) {
	lr := NewLineReader(strings.NewReader("first\nsecond\nlast"))
	buf := make([]byte, 64)

	for _, want := range []string{"first\n", "second\n", "last"} {
		n, err := lr.Read(buf)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if got := string(buf[:n]); got != want {
			t.Errorf("Read() = %q, want %q", got, want)
		}
	}
	if lr.Exhausted() {
		t.Error("exhausted before EOF was read")
	}
	if _, err := lr.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read() at end = %v, want EOF", err)
	}
	if !lr.Exhausted() {
		t.Error("Exhausted() = false after EOF")
	}
}

func TestLineReader_SmallBuffer(t *testing.T) {
	lr := NewLineReader(strings.NewReader("abcdef\nxy\n"))
	var got []string
	buf := make([]byte, 4)
	for {
		n, err := lr.Read(buf)
		if n > 0 {
			got = append(got, string(buf[:n]))
		}
		if err != nil {
			break
		}
	}
	if strings.Join(got, "|") != "abcd|ef\n|xy\n" {
		t.Errorf("reads = %q", got)
	}
}
