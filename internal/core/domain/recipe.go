package domain

import "fmt"

// Recipe is the explicit, ordered record of build-time facts that make up an
// image: base runtime reference, working directory, file-copy set, declared
// ports, environment defaults and the startup command. It is the data-driven
// equivalent of a Dockerfile for the subset drydock supports.
type Recipe struct {
	// BaseImage is the foundation runtime reference, e.g. "python:3.11.3".
	BaseImage string `json:"base_image"`
	// WorkDir is the absolute path files are copied into and the startup
	// command runs from, e.g. "/app".
	WorkDir string `json:"workdir"`
	// Copies is the ordered file-copy set applied to the image.
	Copies []CopyStep `json:"copies"`
	// ExposedPorts is declarative metadata only: it asserts intent that the
	// process will listen on these ports, it does not bind anything.
	ExposedPorts []int `json:"exposed_ports"`
	// Env holds environment defaults visible to the started process unless
	// overridden at launch time.
	Env []EnvVar `json:"env"`
	// Cmd is the argv vector spawned as the container's main process.
	Cmd []string `json:"cmd"`
}

// CopyStep places files from the build context into the image.
type CopyStep struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// EnvVar is a single default environment entry.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EnvStrings returns the defaults in KEY=VALUE form, the shape the container
// runtime expects.
func (r *Recipe) EnvStrings() []string {
	out := make([]string, 0, len(r.Env))
	for _, e := range r.Env {
		out = append(out, fmt.Sprintf("%s=%s", e.Key, e.Value))
	}
	return out
}
