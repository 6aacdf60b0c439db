package sandbox

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
)

// runner is one live sandbox: a frame wire plus lifecycle controls.
type runner interface {
	conn() *frameConn
	pid() int
	stop()                 // polite: close stdin, signal termination
	kill()                 // hard stop
	done() <-chan struct{} // closed once the sandbox has exited
}

// procSandbox wraps a started exec.Cmd speaking the frame wire on its
// stdin/stdout. Tier 1 uses it directly; tier 3 drives the container
// runtime CLI through it.
type procSandbox struct {
	cmd    *exec.Cmd
	fc     *frameConn
	stdin  io.WriteCloser
	exited chan struct{}

	stopOnce sync.Once
	killOnce sync.Once
}

// startCommand wires pipes, starts the command, and begins the stderr and
// exit pumps.
func startCommand(cmd *exec.Cmd, key []byte, gearID string, perMinute, burst int) (*procSandbox, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start sandbox: %w", err)
	}
	slog.Debug("Sandbox started", "gear_id", gearID, "pid", cmd.Process.Pid)

	s := &procSandbox{
		cmd:    cmd,
		fc:     newFrameConn(key, stdout, stdin, perMinute, burst),
		stdin:  stdin,
		exited: make(chan struct{}),
	}
	go pumpStderr(gearID, stderr)
	go func() {
		err := cmd.Wait()
		slog.Debug("Sandbox exited", "gear_id", gearID, "error", err)
		close(s.exited)
	}()
	return s, nil
}

func (s *procSandbox) conn() *frameConn { return s.fc }

func (s *procSandbox) pid() int {
	if s.cmd.Process != nil {
		return s.cmd.Process.Pid
	}
	return 0
}

// stop closes stdin (the conventional exit request) and sends SIGTERM.
func (s *procSandbox) stop() {
	s.stopOnce.Do(func() {
		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Signal(syscall.SIGTERM)
		}
	})
}

func (s *procSandbox) kill() {
	s.killOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}

func (s *procSandbox) done() <-chan struct{} { return s.exited }

// pumpStderr keeps plugin stderr out of the wire and in the logs.
func pumpStderr(gearID string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		slog.Debug("Gear stderr", "gear_id", gearID, "line", scanner.Text())
	}
}
