package instance

import (
	"os"

	"github.com/plantops/plantops-backend/pkg/env"
)

// ID identifies the running process in logs and lock values. It prefers
// PLANTOPS_INSTANCE_ID, then the platform's DYNO, then the hostname.
func ID() string {
	if id := env.First("PLANTOPS_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
