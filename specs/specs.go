// Package specs carries the built-in command descriptors, one directory per
// context.
package specs

import (
	"embed"
	"os"

	"github.com/Klingon-tech/avash/internal/command"
)

//go:embed avm platform info
var builtin embed.FS

// Load reads descriptors from dir, or the built-in set when dir is empty.
func Load(dir string) ([]*command.Spec, error) {
	if dir == "" {
		return command.LoadSpecs(builtin)
	}
	return command.LoadSpecs(os.DirFS(dir))
}
