/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: process.go
Description: Process system under learning. Starts one target process per
query and speaks a line protocol with it: every input symbol is written as a
line to stdin and the next stdout line is the output of that step.
*/

package sul

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrStepTimeout is returned when the target does not answer a step in time
var ErrStepTimeout = errors.New("target did not answer in time")

type line struct {
	text string
	err  error
}

// ProcessSUL runs a local program as the system under learning
type ProcessSUL struct {
	target interfaces.ProcessTarget
	logger *logrus.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan line
	cancel context.CancelFunc
}

// NewProcessSUL creates a process system for target
func NewProcessSUL(target interfaces.ProcessTarget, logger *logrus.Logger) (*ProcessSUL, error) {
	if target.Command == "" {
		return nil, fmt.Errorf("process target has no command")
	}
	if target.StepTimeout <= 0 {
		target.StepTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ProcessSUL{target: target, logger: logger}, nil
}

// Pre starts a fresh process
func (p *ProcessSUL) Pre(ctx context.Context) error {
	pctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(pctx, p.target.Command, p.target.Args...)
	cmd.Env = os.Environ()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", p.target.Command, err)
	}

	lines := make(chan line, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			lines <- line{text: strings.TrimSpace(scanner.Text())}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		lines <- line{err: err}
	}()

	p.cmd, p.stdin, p.lines, p.cancel = cmd, stdin, lines, cancel
	p.logger.WithField("pid", cmd.Process.Pid).Debug("Target process started")
	return nil
}

// Step writes input as one line and reads one line back
func (p *ProcessSUL) Step(ctx context.Context, input string) (string, error) {
	if p.cmd == nil {
		return "", fmt.Errorf("process not started")
	}
	if _, err := io.WriteString(p.stdin, input+"\n"); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", input, err)
	}

	timer := time.NewTimer(p.target.StepTimeout)
	defer timer.Stop()
	select {
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", fmt.Errorf("target closed output after %q: %w", input, l.err)
		}
		return l.text, nil
	case <-timer.C:
		return "", fmt.Errorf("%w: input %q after %s", ErrStepTimeout, input, p.target.StepTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Post kills the process and reaps it
func (p *ProcessSUL) Post(context.Context) error {
	if p.cmd == nil {
		return nil
	}
	_ = p.stdin.Close()
	p.cancel()
	_ = p.cmd.Wait()
	for range p.lines {
	}
	p.cmd, p.stdin, p.lines, p.cancel = nil, nil, nil, nil
	return nil
}
