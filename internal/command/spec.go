package command

import (
	"errors"
	"fmt"
	"strings"

	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/keystore"
)

// UseDefault is the token an operator types to leave a parameter unset so
// the node applies its own default.
const UseDefault = "-"

var (
	ErrInsufficientParams = errors.New("insufficient parameters")
	ErrNoActiveUser       = errors.New("no active keystore user")
)

// SanitizeError reports a raw value that could not be coerced into its
// parameter's type.
type SanitizeError struct {
	Field string
	Value string
	Err   error
}

func (e *SanitizeError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *SanitizeError) Unwrap() error { return e.Err }

// Spec is the declarative description of a command: its parameters and the
// remote capability it binds to.
type Spec struct {
	Context     string
	Name        string
	Description string
	Params      []*ParamSpec
	// Method overrides the remote method name; empty means Name.
	Method string
	// Output names a field of the remote result that needs follow-up
	// (OutputTxID registers the transaction for tracking).
	Output string

	useKeystore bool
}

// OutputTxID marks a spec whose result carries a transaction ID.
const OutputTxID = "txID"

// NewSpec builds a spec. When the params include both a username and a
// password, those two are hidden and filled from the active credential.
func NewSpec(context, name, description string, params ...*ParamSpec) *Spec {
	s := &Spec{
		Context:     context,
		Name:        name,
		Description: description,
		Params:      params,
	}

	var hasUser, hasPass bool
	for _, p := range params {
		switch p.Name {
		case ParamUsername:
			hasUser = true
		case ParamPassword:
			hasPass = true
		}
	}
	if hasUser && hasPass {
		s.useKeystore = true
		for _, p := range params {
			if p.isCredential() {
				p.Hidden = true
				p.Optional = true
			}
		}
	}
	return s
}

// ID is unique across the registry.
func (s *Spec) ID() string {
	return s.Context + "_" + s.Name
}

// UseKeystore reports whether the active credential is injected.
func (s *Spec) UseKeystore() bool {
	return s.useKeystore
}

// RemoteMethod returns the method name used on the remote capability.
func (s *Spec) RemoteMethod() string {
	if s.Method != "" {
		return s.Method
	}
	return s.Name
}

// ParamNames lists every parameter name in declaration order.
func (s *Spec) ParamNames() []string {
	out := make([]string, len(s.Params))
	for i, p := range s.Params {
		out[i] = p.Name
	}
	return out
}

// RequiredParameterCount counts the non-optional params.
func (s *Spec) RequiredParameterCount() int {
	n := 0
	for _, p := range s.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// VisibleParams are the params the operator types.
func (s *Spec) VisibleParams() []*ParamSpec {
	out := make([]*ParamSpec, 0, len(s.Params))
	for _, p := range s.Params {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

// ValidateInput turns raw tokens into the positional argument list of the
// remote call. Unset slots are nil.
func (s *Spec) ValidateInput(raw []string, user *keystore.User) ([]any, error) {
	if len(raw) < s.RequiredParameterCount() {
		return nil, shellerr.Wrap(shellerr.CodeValidation,
			fmt.Sprintf("%s expects at least %d parameters, got %d", s.Name, s.RequiredParameterCount(), len(raw)),
			ErrInsufficientParams)
	}

	out := make([]any, 0, len(s.Params))
	cursor := 0
	for _, p := range s.Params {
		if s.useKeystore && p.isCredential() {
			if user == nil {
				return nil, shellerr.Wrap(shellerr.CodePrecondition,
					"set the active user first with: keystore setUser <username> <password>", ErrNoActiveUser)
			}
			if p.Name == ParamUsername {
				out = append(out, user.Username)
			} else {
				out = append(out, user.Password)
			}
			continue
		}

		if cursor >= len(raw) {
			if !p.Optional {
				return nil, shellerr.Wrap(shellerr.CodeValidation,
					fmt.Sprintf("missing value for %s", p.Name), ErrInsufficientParams)
			}
			out = append(out, nil)
			continue
		}

		tok := raw[cursor]
		cursor++
		if tok == UseDefault {
			out = append(out, nil)
			continue
		}

		v, err := p.Sanitize(tok)
		if err != nil {
			return nil, shellerr.Wrap(shellerr.CodeValidation, "sanitize input",
				&SanitizeError{Field: p.Name, Value: tok, Err: err})
		}
		out = append(out, v)
	}

	return out, nil
}

// Usage renders the help block for the spec.
func (s *Spec) Usage(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(s.Name)
	for _, p := range s.VisibleParams() {
		if p.Optional {
			fmt.Fprintf(&b, " [%s]", p.Name)
		} else {
			fmt.Fprintf(&b, " <%s>", p.Name)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s- %s\n", prefix, s.Description)
	for _, p := range s.VisibleParams() {
		fmt.Fprintf(&b, "%s%s%s: %s\n", prefix, prefix, p.Name, p.Description)
	}
	return b.String()
}
