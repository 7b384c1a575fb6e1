package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/instructions"
	"github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/melih/drydock/internal/core/domain"
)

// UnsupportedDirectiveError reports a directive outside the declarative
// subset (RUN, multi-stage FROM, ONBUILD, ...).
type UnsupportedDirectiveError struct {
	Directive string
}

func (e *UnsupportedDirectiveError) Error() string {
	return fmt.Sprintf("unsupported directive %q: only FROM, WORKDIR, COPY, EXPOSE, ENV and CMD are recognized", e.Directive)
}

// Parse reads a Dockerfile-style recipe and returns the equivalent ordered
// configuration record. Later ENV entries for the same key win, matching
// Docker semantics. The result is not validated; call Validate for that.
func Parse(content string) (*domain.Recipe, error) {
	result, err := parser.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if len(result.AST.Children) == 0 {
		return nil, fmt.Errorf("received empty recipe")
	}

	stages, metaArgs, err := instructions.Parse(result.AST)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe instructions: %w", err)
	}
	if len(metaArgs) > 0 {
		return nil, &UnsupportedDirectiveError{Directive: "ARG"}
	}
	if len(stages) != 1 {
		return nil, fmt.Errorf("expected exactly one FROM stage, found %d", len(stages))
	}

	stage := stages[0]
	r := &domain.Recipe{BaseImage: stage.BaseName}

	for _, cmd := range stage.Commands {
		switch c := cmd.(type) {
		case *instructions.WorkdirCommand:
			r.WorkDir = c.Path
		case *instructions.CopyCommand:
			if c.From != "" {
				return nil, &UnsupportedDirectiveError{Directive: "COPY --from"}
			}
			for _, src := range c.SourcePaths {
				r.Copies = append(r.Copies, domain.CopyStep{Src: src, Dst: c.DestPath})
			}
		case *instructions.ExposeCommand:
			for _, p := range c.Ports {
				port, err := parsePort(p)
				if err != nil {
					return nil, err
				}
				r.ExposedPorts = append(r.ExposedPorts, port)
			}
		case *instructions.EnvCommand:
			for _, kv := range c.Env {
				r.Env = setEnv(r.Env, kv.Key, kv.Value)
			}
		case *instructions.CmdCommand:
			argv := append([]string{}, c.CmdLine...)
			if c.PrependShell {
				argv = []string{"/bin/sh", "-c", strings.Join(argv, " ")}
			}
			r.Cmd = argv
		default:
			return nil, &UnsupportedDirectiveError{Directive: strings.ToUpper(cmd.Name())}
		}
	}

	return r, nil
}

// parsePort accepts "8080" and "8080/proto" for any protocol; only the port
// number is recorded, the protocol is declared metadata we do not model.
func parsePort(s string) (int, error) {
	numeric, _, _ := strings.Cut(s, "/")
	port, err := strconv.Atoi(numeric)
	if err != nil {
		return 0, fmt.Errorf("invalid exposed port %q: %w", s, err)
	}
	return port, nil
}

// setEnv applies last-wins semantics for repeated keys while keeping first
// occurrence order.
func setEnv(env []domain.EnvVar, key, value string) []domain.EnvVar {
	for i := range env {
		if env[i].Key == key {
			env[i].Value = value
			return env
		}
	}
	return append(env, domain.EnvVar{Key: key, Value: value})
}
