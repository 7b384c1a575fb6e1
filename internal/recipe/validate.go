package recipe

import (
	"errors"
	"fmt"
	"path"

	"github.com/melih/drydock/internal/core/domain"
)

var (
	ErrNoBaseImage = errors.New("recipe has no base image reference")
	ErrNoCmd       = errors.New("recipe has no startup command")
)

// Validate checks the structural facts a recipe must carry before it can be
// assembled: a base reference, an absolute working directory, ports in range
// and a non-empty startup command. Copy steps are deliberately not checked
// against the context here; the copy is verbatim.
func Validate(r *domain.Recipe) error {
	if r.BaseImage == "" {
		return ErrNoBaseImage
	}
	if r.WorkDir != "" && !path.IsAbs(r.WorkDir) {
		return fmt.Errorf("working directory %q must be absolute", r.WorkDir)
	}
	for _, p := range r.ExposedPorts {
		if p < 1 || p > 65535 {
			return fmt.Errorf("exposed port %d out of range 1-65535", p)
		}
	}
	for _, e := range r.Env {
		if e.Key == "" {
			return fmt.Errorf("environment default with empty key")
		}
	}
	for _, c := range r.Copies {
		if c.Src == "" || c.Dst == "" {
			return fmt.Errorf("copy step with empty source or destination")
		}
	}
	if len(r.Cmd) == 0 {
		return ErrNoCmd
	}
	return nil
}
