package audio

import (
	"context"
	"os/exec"
)

// Runner executes an external transcoding command and returns its combined
// output for diagnostics.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses. The subprocess is killed when ctx
// is done.
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// truncate keeps diagnostic output short enough for a log line
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
