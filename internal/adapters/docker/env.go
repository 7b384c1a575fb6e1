package docker

import (
	"fmt"
	"sort"
	"strings"
)

// EnvStrings flattens a launch-time override map into the KEY=VALUE list the
// container runtime expects, in deterministic key order.
func EnvStrings(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, overrides[k]))
	}
	return out
}

// MergeEnv layers launch-time overrides over image defaults: a default
// applies unless the same key is overridden, and overridden keys keep the
// override value. Defaults keep their order; new override keys follow.
func MergeEnv(defaults, overrides []string) []string {
	overrideIdx := make(map[string]int, len(overrides))
	for i, entry := range overrides {
		overrideIdx[envKey(entry)] = i
	}

	merged := make([]string, 0, len(defaults)+len(overrides))
	used := make(map[string]bool, len(overrides))
	for _, entry := range defaults {
		key := envKey(entry)
		if i, ok := overrideIdx[key]; ok {
			merged = append(merged, overrides[i])
			used[key] = true
			continue
		}
		merged = append(merged, entry)
	}
	for _, entry := range overrides {
		if !used[envKey(entry)] {
			merged = append(merged, entry)
		}
	}
	return merged
}

func envKey(entry string) string {
	key, _, _ := strings.Cut(entry, "=")
	return key
}
