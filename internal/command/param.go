package command

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParamType is the declared type of a command parameter.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeStringArray ParamType = "string[]"
	TypeNumberArray ParamType = "number[]"
	TypeBigInt      ParamType = "bn"
	TypeDate        ParamType = "date"
)

var paramTypeAliases = map[string]ParamType{
	"":              TypeString,
	"string":        TypeString,
	"string[]":      TypeStringArray,
	"array<string>": TypeStringArray,
	"number[]":      TypeNumberArray,
	"array<number>": TypeNumberArray,
	"bn":            TypeBigInt,
	"bigint":        TypeBigInt,
	"number":        TypeBigInt,
	"date":          TypeDate,
}

// ParseParamType resolves a descriptor type name, accepting the legacy
// spellings (BN, Array<number>, Date).
func ParseParamType(s string) (ParamType, error) {
	t, ok := paramTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown param type %q", s)
	}
	return t, nil
}

// Names of the parameters filled from the active credential.
const (
	ParamUsername = "username"
	ParamPassword = "password"
)

// ParamSpec describes one command parameter.
type ParamSpec struct {
	Name        string
	Description string
	Type        ParamType
	Optional    bool
	// Hidden params are injected by the shell, never typed by the operator.
	// A hidden param is always optional.
	Hidden bool
}

// Param builds a required parameter.
func Param(name string, typ ParamType, description string) *ParamSpec {
	return &ParamSpec{Name: name, Type: typ, Description: description}
}

// OptionalParam builds an optional parameter.
func OptionalParam(name string, typ ParamType, description string) *ParamSpec {
	return &ParamSpec{Name: name, Type: typ, Description: description, Optional: true}
}

func (p *ParamSpec) isCredential() bool {
	return p.Name == ParamUsername || p.Name == ParamPassword
}

// Sanitize coerces a raw token into the parameter's declared type:
// string → string, string[] → []string, number[] → []float64,
// bn → *big.Int, date → time.Time.
func (p *ParamSpec) Sanitize(raw string) (any, error) {
	switch p.Type {
	case TypeString, "":
		return raw, nil
	case TypeStringArray:
		return SplitTokens(raw), nil
	case TypeNumberArray:
		return parseNumberArray(raw)
	case TypeBigInt:
		return ParseBigInt(raw)
	case TypeDate:
		return ParseDate(raw, time.Now())
	default:
		return nil, fmt.Errorf("unsupported param type %q", p.Type)
	}
}

func parseNumberArray(raw string) ([]float64, error) {
	fields := SplitTokens(raw)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || strings.Contains(f, "_") || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("not a number: %s", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseBigInt parses a decimal (or 0x-prefixed hex) integer of any size.
func ParseBigInt(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("not an integer: %s", raw)
	}
	return n, nil
}

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDate reads raw as whole seconds since the unix epoch. Values that
// are not integers are tried as natural-language dates relative to base
// ("in 2 days", "tomorrow 10am").
func ParseDate(raw string, base time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	r, err := dateParser.Parse(s, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	// A match must cover the whole value; "abc 3pm" is not a date.
	if r == nil || r.Index != 0 || len(r.Text) != len(s) {
		return time.Time{}, fmt.Errorf("not a date: %s", raw)
	}
	return r.Time.UTC(), nil
}
