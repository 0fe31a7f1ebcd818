package dispatch

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Dispatcher modes.
const (
	stateGlobal  = "global"
	stateContext = "context"

	eventEnter = "enter"
	eventExit  = "exit"

	metaContext = "context"
)

// mode tracks whether commands are typed with or without a context prefix.
type mode struct {
	fsm *fsm.FSM
}

func newMode() *mode {
	return &mode{
		fsm: fsm.NewFSM(stateGlobal, fsm.Events{
			{Name: eventEnter, Src: []string{stateGlobal, stateContext}, Dst: stateContext},
			{Name: eventExit, Src: []string{stateContext}, Dst: stateGlobal},
		}, fsm.Callbacks{}),
	}
}

// active returns the active context, or "" in global mode.
func (m *mode) active() string {
	if m.fsm.Is(stateGlobal) {
		return ""
	}
	v, ok := m.fsm.Metadata(metaContext)
	if !ok {
		return ""
	}
	name, _ := v.(string)
	return name
}

// enter makes name the active context. Switching between contexts is a
// self-transition of the context state.
func (m *mode) enter(ctx context.Context, name string) error {
	if err := ignoreNoTransition(m.fsm.Event(ctx, eventEnter)); err != nil {
		return err
	}
	m.fsm.SetMetadata(metaContext, name)
	return nil
}

// exit returns to global mode. It reports false if no context was active.
func (m *mode) exit(ctx context.Context) (bool, error) {
	if !m.fsm.Can(eventExit) {
		return false, nil
	}
	if err := m.fsm.Event(ctx, eventExit); err != nil {
		return false, err
	}
	m.fsm.SetMetadata(metaContext, "")
	return true, nil
}

func ignoreNoTransition(err error) error {
	var nte fsm.NoTransitionError
	if errors.As(err, &nte) {
		return nil
	}
	return err
}
