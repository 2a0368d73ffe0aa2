package config

import (
	"fmt"
	"os"
)

// Template returns the annotated starter configuration for a host process.
func Template() string {
	return runtimeTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(runtimeTemplate), 0o600)
}

const runtimeTemplate = `app = "xrsim"
debug_addr = ":9300"
cors_origins = ["http://localhost:3000"]

# Simulated host frame cadence, frames per second.
frame_rate = 60

# Fixed physics interval, milliseconds.
physics_timestep_ms = 20

[session]
mode = "immersive-ar"
required_features = ["local-floor"]
optional_features = ["hand-tracking", "depth-sensing"]
auto_start = false
`
