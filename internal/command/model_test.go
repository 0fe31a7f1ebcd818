package command

import (
	"context"
	"errors"
	"testing"

	shellerr "github.com/Klingon-tech/avash/internal/errors"
)

type stubModel struct {
	context, name string
	fields        []Field
	ran           int
	got           Answers
	runErr        error
	panicMsg      string
	gate          *Gate
	busyDuringRun bool
}

func (m *stubModel) Context() string       { return m.context }
func (m *stubModel) Name() string          { return m.name }
func (m *stubModel) Help() string          { return "stub" }
func (m *stubModel) Fields() []Field       { return m.fields }
func (m *stubModel) RequireKeystore() bool { return false }

func (m *stubModel) Run(_ context.Context, a Answers) error {
	m.ran++
	m.got = a
	if m.gate != nil {
		m.busyDuringRun = m.gate.Busy()
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.runErr
}

type stubPrompter struct {
	answers Answers
	err     error
	asked   []Question
}

func (p *stubPrompter) Prompt(_ context.Context, qs []Question) (Answers, error) {
	p.asked = qs
	return p.answers, p.err
}

func TestPromptAndRun_FillsDefaults(t *testing.T) {
	gate := &Gate{}
	m := &stubModel{
		context: "platform", name: "addValidator", gate: gate,
		fields: []Field{
			{Name: "nodeId", Prompt: "Node ID", Default: "NodeID-abc"},
			{Name: "stakeAmount", Prompt: "Stake"},
		},
	}
	p := &stubPrompter{answers: Answers{"stakeAmount": " 2000 "}}

	if err := PromptAndRun(context.Background(), m, p, gate); err != nil {
		t.Fatalf("PromptAndRun() error: %v", err)
	}
	if m.ran != 1 {
		t.Fatalf("Run called %d times", m.ran)
	}
	if m.got.String("nodeId") != "NodeID-abc" {
		t.Errorf("nodeId = %q, want default", m.got.String("nodeId"))
	}
	if n, err := m.got.BigInt("stakeAmount"); err != nil || n.Int64() != 2000 {
		t.Errorf("stakeAmount = %v, %v", n, err)
	}
	if len(p.asked) != 2 || p.asked[0].Text != "Node ID" || p.asked[0].Default != "NodeID-abc" {
		t.Errorf("questions = %+v", p.asked)
	}
	if !m.busyDuringRun {
		t.Error("gate not held while running")
	}
	if gate.Busy() {
		t.Error("gate still held after PromptAndRun")
	}
}

func TestPromptAndRun_AbortSkipsRun(t *testing.T) {
	gate := &Gate{}
	m := &stubModel{context: "c", name: "n"}
	p := &stubPrompter{err: ErrAborted}

	err := PromptAndRun(context.Background(), m, p, gate)
	if !shellerr.Is(err, shellerr.CodeAborted) {
		t.Errorf("err = %v, want aborted", err)
	}
	if m.ran != 0 {
		t.Error("Run called after abort")
	}
	if gate.Busy() {
		t.Error("gate held after abort")
	}
}

func TestPromptAndRun_RecoversPanic(t *testing.T) {
	gate := &Gate{}
	m := &stubModel{context: "c", name: "n", panicMsg: "boom"}

	err := PromptAndRun(context.Background(), m, &stubPrompter{answers: Answers{}}, gate)
	if !shellerr.Is(err, shellerr.CodeInternal) {
		t.Errorf("err = %v, want internal", err)
	}
	if gate.Busy() {
		t.Error("gate held after panic")
	}
}

func TestPromptAndRun_RunErrorReturned(t *testing.T) {
	want := errors.New("node said no")
	m := &stubModel{context: "c", name: "n", runErr: want}

	err := PromptAndRun(context.Background(), m, &stubPrompter{answers: Answers{}}, &Gate{})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestPromptAndRun_GateBusy(t *testing.T) {
	gate := &Gate{}
	release, ok := gate.Acquire()
	if !ok {
		t.Fatal("Acquire() on idle gate failed")
	}
	defer release()

	m := &stubModel{context: "c", name: "n"}
	if err := PromptAndRun(context.Background(), m, &stubPrompter{}, gate); err == nil {
		t.Error("PromptAndRun() should refuse while gate is held")
	}
	if m.ran != 0 {
		t.Error("Run called while gate held")
	}
}

func TestGate_ReleaseIdempotent(t *testing.T) {
	var g Gate
	release, _ := g.Acquire()
	release()
	release()

	r2, ok := g.Acquire()
	if !ok {
		t.Fatal("gate not reusable after release")
	}
	release()
	if !g.Busy() {
		t.Error("stale release freed a newer holder")
	}
	r2()
}

func TestAnswers_Date(t *testing.T) {
	a := Answers{"start": "1700000000", "empty": ""}
	got, err := a.Date("start")
	if err != nil || got.Unix() != 1700000000 {
		t.Errorf("Date(start) = %v, %v", got, err)
	}
	if _, err := a.Date("empty"); err == nil {
		t.Error("Date(empty) should fail")
	}
}
