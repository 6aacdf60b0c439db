package sandbox

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/axisworks/axis/pkg/models"
)

// BuiltinFunc is the body of a built-in gear. Builtins run in-process
// (tier 2) and are only eligible when the manifest declares no filesystem
// or network permissions.
type BuiltinFunc func(ctx context.Context, action string, params map[string]any) (map[string]any, error)

// isolateSandbox runs a builtin behind the same framed wire as the other
// tiers, over in-memory pipes instead of process stdio.
type isolateSandbox struct {
	fc      *frameConn
	cancel  context.CancelFunc
	hostR   *io.PipeReader
	hostW   *io.PipeWriter
	pluginR *io.PipeReader
	pluginW *io.PipeWriter
	exited  chan struct{}
}

func spawnIsolate(ctx context.Context, fn BuiltinFunc, key []byte, perMinute, burst int) *isolateSandbox {
	ctx, cancel := context.WithCancel(ctx)

	// plugin -> host
	hostR, pluginW := io.Pipe()
	// host -> plugin
	pluginR, hostW := io.Pipe()

	s := &isolateSandbox{
		fc:      newFrameConn(key, hostR, hostW, perMinute, burst),
		cancel:  cancel,
		hostR:   hostR,
		hostW:   hostW,
		pluginR: pluginR,
		pluginW: pluginW,
		exited:  make(chan struct{}),
	}

	go func() {
		defer close(s.exited)
		defer pluginW.Close()
		runBuiltin(ctx, fn, key, pluginR, pluginW)
	}()

	return s
}

func (s *isolateSandbox) conn() *frameConn { return s.fc }

func (s *isolateSandbox) pid() int { return 0 }

func (s *isolateSandbox) stop() {
	s.cancel()
	s.hostW.Close()
}

func (s *isolateSandbox) kill() {
	s.stop()
	s.pluginR.CloseWithError(io.ErrClosedPipe)
	s.hostR.Close()
}

func (s *isolateSandbox) done() <-chan struct{} { return s.exited }

// runBuiltin is the plugin side of the wire: read signed request frames,
// invoke the builtin, write signed responses. Builtins hold the host to its
// own signing rule.
func runBuiltin(ctx context.Context, fn BuiltinFunc, key []byte, r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			continue
		}
		var req requestFrame
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}
		if !verifyObject(key, obj, req.HMAC) {
			slog.Debug("Builtin dropped a mis-signed request frame")
			continue
		}

		resp := pluginFrame{CorrelationID: req.CorrelationID}
		result, err := fn(ctx, req.Action, req.Parameters)
		if err != nil {
			fe := &frameError{Message: err.Error()}
			if agentErr := models.AsAgentError(err); agentErr != nil {
				fe.Code = agentErr.Code
				fe.Message = agentErr.Message
			}
			resp.Error = fe
		} else {
			resp.Result = result
		}

		out, err := marshalSigned(key, resp)
		if err != nil {
			slog.Error("Failed to sign builtin response", "error", err)
			return
		}
		if _, err := w.Write(append(out, '\n')); err != nil {
			return
		}
	}
}
