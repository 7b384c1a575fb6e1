package domain

// Container represents a container in the system (Docker, Podman, etc.)
type Container struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
}

// LaunchOptions carries the per-instance knobs for starting a container.
// EnvOverrides take precedence over the image's built-in environment
// defaults; everything else falls back to what the image config declares.
type LaunchOptions struct {
	Name         string            `json:"name"`
	EnvOverrides map[string]string `json:"env"`
}
