package specs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/avash/internal/command"
	"github.com/Klingon-tech/avash/internal/handlers"
)

func TestLoad_Builtin(t *testing.T) {
	specs, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(specs) != 18 {
		t.Errorf("loaded %d specs, want 18", len(specs))
	}

	byID := make(map[string]*command.Spec)
	for _, s := range specs {
		byID[s.ID()] = s
	}

	tests := []struct {
		id       string
		required int
		keystore bool
		output   string
	}{
		{"avm_getBalance", 1, false, ""},
		{"avm_mint", 4, true, command.OutputTxID},
		{"avm_getAssetDescription", 1, false, ""},
		{"platform_createSubnet", 2, true, command.OutputTxID},
		{"platform_addDelegator", 5, true, command.OutputTxID},
		{"platform_getHeight", 0, false, ""},
		{"info_peers", 0, false, ""},
	}
	for _, tt := range tests {
		s := byID[tt.id]
		if s == nil {
			t.Errorf("%s not loaded", tt.id)
			continue
		}
		if got := s.RequiredParameterCount(); got != tt.required {
			t.Errorf("%s required = %d, want %d", tt.id, got, tt.required)
		}
		if s.UseKeystore() != tt.keystore {
			t.Errorf("%s UseKeystore = %v", tt.id, s.UseKeystore())
		}
		if s.Output != tt.output {
			t.Errorf("%s output = %q", tt.id, s.Output)
		}
	}

	if byID["platform_getStakingAssetID"].Description == "" {
		t.Error("legacy desc key not read")
	}
}

func TestLoad_NoCollisionWithBuiltins(t *testing.T) {
	specs, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	r := command.NewRegistry()
	if err := r.Register(handlers.Commands(handlers.Deps{})...); err != nil {
		t.Fatalf("Register(handlers) error: %v", err)
	}
	if err := r.RegisterSpecs(specs); err != nil {
		t.Fatalf("RegisterSpecs() error: %v", err)
	}
}

func TestLoad_Dir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "health"), 0755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(filepath.Join(dir, "health", "health.yaml"),
		[]byte("description: Node health\nparams: []\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	specs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(specs) != 1 || specs[0].ID() != "health_health" {
		t.Errorf("specs = %+v", specs)
	}
}
