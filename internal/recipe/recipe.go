// Package recipe turns Dockerfile-style build recipes into an explicit,
// ordered configuration record (domain.Recipe) and back. Only the declarative
// subset is supported: FROM, WORKDIR, COPY, EXPOSE, ENV, CMD.
package recipe

import (
	"path"
	"strings"

	"github.com/melih/drydock/internal/core/domain"
)

// DefaultRecipeFile is the recipe file looked up inside a build context when
// none is given explicitly.
const DefaultRecipeFile = "Dockerfile"

// Default returns the stock recipe: a Python runtime serving an application
// copied into /app, with one environment default and a declared port.
func Default() *domain.Recipe {
	return &domain.Recipe{
		BaseImage:    "python:3.11.3",
		WorkDir:      "/app",
		Copies:       []domain.CopyStep{{Src: ".", Dst: "."}},
		ExposedPorts: []int{8080},
		Env:          []domain.EnvVar{{Key: "NAME", Value: "Bot"}},
		Cmd:          []string{"python", "main.py"},
	}
}

// interpreters whose first non-flag argument names a script file relative to
// the working directory.
var scriptInterpreters = map[string]bool{
	"python":  true,
	"python3": true,
	"node":    true,
	"ruby":    true,
	"sh":      true,
	"bash":    true,
}

// EntrypointFile returns the context-relative file the startup command names,
// or "" when none can be inferred. The copy step is verbatim and unvalidated,
// so this only feeds an advisory check: if the file is missing from the
// context, container start will fail with a non-zero exit at runtime.
func EntrypointFile(r *domain.Recipe) string {
	if len(r.Cmd) < 2 {
		return ""
	}
	base := path.Base(r.Cmd[0])
	if !scriptInterpreters[base] {
		return ""
	}
	// A shell running "-c" executes a command string, not a script file.
	// Shell-form commands parse into exactly this shape.
	if (base == "sh" || base == "bash") && r.Cmd[1] == "-c" {
		return ""
	}
	for _, arg := range r.Cmd[1:] {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if path.IsAbs(arg) {
			return ""
		}
		return arg
	}
	return ""
}
