// Package llm runs the external language model that turns requests into plans.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Client completes a prompt. Implementations do not retry.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClaudeCLI invokes the claude command line in print mode.
type ClaudeCLI struct {
	Command string
	Model   string
	Timeout time.Duration
	Dir     string
	Log     *zap.Logger
}

func (c *ClaudeCLI) Complete(ctx context.Context, prompt string) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	command := c.Command
	if command == "" {
		command = "claude"
	}
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	args := []string{"-p", prompt, "--output-format", "json"}
	if c.Model != "" {
		args = append(args, "--model", c.Model)
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = c.Dir
	cmd.Env = filteredEnv()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	code, err := exitCode(cmd.Run())
	if ctx.Err() != nil {
		return "", fmt.Errorf("%s: %w", command, ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("running %s: %w", command, err)
	}
	if code != 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		log.Warn("model command failed", zap.String("command", command), zap.Int("exit", code))
		return "", fmt.Errorf("%s exited with code %d: %s", command, code, msg)
	}

	out, err := parseOutput(stdout.Bytes())
	if err != nil {
		return "", err
	}
	log.Debug("model call finished",
		zap.String("model", c.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Float64("cost_usd", out.CostUSD))
	return out.Text, nil
}

// filteredEnv returns the process environment minus CLAUDECODE variables.
func filteredEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		key := strings.SplitN(e, "=", 2)[0]
		if strings.HasPrefix(key, "CLAUDECODE") {
			continue
		}
		env = append(env, e)
	}
	return env
}
