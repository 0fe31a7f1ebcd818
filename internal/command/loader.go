package command

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptor is the on-disk shape of one declared command.
type descriptor struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Desc        string            `json:"desc" yaml:"desc"`
	Method      string            `json:"method" yaml:"method"`
	Output      string            `json:"output" yaml:"output"`
	Params      []paramDescriptor `json:"params" yaml:"params"`
}

type paramDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Optional    bool   `json:"optional" yaml:"optional"`
	Description string `json:"description" yaml:"description"`
	Desc        string `json:"desc" yaml:"desc"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// LoadSpecs reads command descriptors from fsys. Each top-level directory
// names a context and holds one .json, .yaml or .yml file per command.
// Files at the root and other extensions are ignored.
func LoadSpecs(fsys fs.FS) ([]*Spec, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read spec root: %w", err)
	}

	var specs []*Spec
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		context := e.Name()

		files, err := fs.ReadDir(fsys, context)
		if err != nil {
			return nil, fmt.Errorf("read context %s: %w", context, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			p := path.Join(context, f.Name())
			s, err := loadSpecFile(fsys, context, p)
			if err != nil {
				return nil, err
			}
			if s != nil {
				specs = append(specs, s)
			}
		}
	}
	return specs, nil
}

func loadSpecFile(fsys fs.FS, context, p string) (*Spec, error) {
	ext := strings.ToLower(path.Ext(p))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, nil
	}

	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}

	var d descriptor
	if ext == ".json" {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}

	s, err := d.spec(context, strings.TrimSuffix(path.Base(p), path.Ext(p)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return s, nil
}

func (d descriptor) spec(context, fallbackName string) (*Spec, error) {
	name := firstNonEmpty(d.Name, fallbackName)

	params := make([]*ParamSpec, 0, len(d.Params))
	seen := make(map[string]bool, len(d.Params))
	for _, pd := range d.Params {
		if pd.Name == "" {
			return nil, fmt.Errorf("param without name")
		}
		if seen[pd.Name] {
			return nil, fmt.Errorf("param %q declared twice", pd.Name)
		}
		seen[pd.Name] = true

		typ, err := ParseParamType(pd.Type)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", pd.Name, err)
		}
		params = append(params, &ParamSpec{
			Name:        pd.Name,
			Type:        typ,
			Optional:    pd.Optional,
			Description: firstNonEmpty(pd.Description, pd.Desc),
		})
	}

	s := NewSpec(context, name, firstNonEmpty(d.Description, d.Desc), params...)
	s.Method = d.Method
	s.Output = d.Output
	return s, nil
}
