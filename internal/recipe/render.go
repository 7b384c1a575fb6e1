package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/melih/drydock/internal/core/domain"
)

// Render serializes the configuration record back into Dockerfile text for
// the daemon-side build. The record is the source of truth; the text is a
// deterministic serialization of it, one directive per build-time fact in
// assembly order.
func Render(r *domain.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n", r.BaseImage)
	if r.WorkDir != "" {
		fmt.Fprintf(&b, "WORKDIR %s\n", r.WorkDir)
	}
	for _, c := range r.Copies {
		fmt.Fprintf(&b, "COPY %s %s\n", c.Src, c.Dst)
	}
	for _, p := range r.ExposedPorts {
		fmt.Fprintf(&b, "EXPOSE %d\n", p)
	}
	for _, e := range r.Env {
		fmt.Fprintf(&b, "ENV %s=%s\n", e.Key, quoteIfNeeded(e.Value))
	}
	if len(r.Cmd) > 0 {
		// Exec form, so the argv vector survives without shell rewriting.
		argv, _ := json.Marshal(r.Cmd)
		fmt.Fprintf(&b, "CMD %s\n", argv)
	}

	return b.String()
}

func quoteIfNeeded(v string) string {
	if strings.ContainsAny(v, " \t\"") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
