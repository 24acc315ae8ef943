package vp

import (
	"os"
	"strconv"
)

// EnvVarNumThreads is the environment variable the kernel deliberately
// ignores when it is set; the kernel warns instead of honoring it.
const EnvVarNumThreads = "SPIKEKERNEL_NUM_THREADS"

// EnvOverride reads a thread-count override from the process environment.
type EnvOverride struct {
	Var string
}

// NewEnvOverride returns an override source for the default variable.
func NewEnvOverride() *EnvOverride {
	return &EnvOverride{Var: EnvVarNumThreads}
}

// Threads returns the override value, or 0 when the variable is absent or
// not a number.
func (o *EnvOverride) Threads() int {
	raw := os.Getenv(o.Var)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// NoOverride is an OverrideSource that is never set. Useful in tests and in
// embedded setups without environment access.
type NoOverride struct{}

func (NoOverride) Threads() int { return 0 }
