package sandbox

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

var (
	// errFrameRate means the plugin exceeded the inbound frame window; the
	// sandbox is terminated.
	errFrameRate = errors.New("inbound frame rate exceeded")

	// errBadSignature means a non-progress frame arrived unsigned or
	// mis-signed.
	errBadSignature = errors.New("unsigned or mis-signed frame")
)

// frameConn drives one sandbox's wire: it writes signed request frames,
// reads plugin frames, verifies their signatures, and enforces the inbound
// frame rate. Unparseable lines consume rate tokens like any other frame —
// a plugin spewing garbage burns its own window — but are otherwise
// skipped.
type frameConn struct {
	key     []byte
	scanner *bufio.Scanner
	limiter *rate.Limiter

	wmu sync.Mutex
	w   io.Writer
}

func newFrameConn(key []byte, r io.Reader, w io.Writer, perMinute, burst int) *frameConn {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxFrameBytes)

	var limiter *rate.Limiter
	if perMinute > 0 {
		if burst <= 0 {
			burst = perMinute
		}
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	}

	return &frameConn{key: key, scanner: scanner, limiter: limiter, w: w}
}

// send writes one signed request frame.
func (c *frameConn) send(frame *requestFrame) error {
	line, err := marshalSigned(c.key, frame)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// next blocks for the next plugin frame. Progress frames pass through
// unsigned; anything else must verify. Returns io.EOF when the plugin
// closes its end.
func (c *frameConn) next() (*pluginFrame, error) {
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			return nil, errFrameRate
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			slog.Debug("Dropping unparseable sandbox frame", "error", err)
			continue
		}
		var frame pluginFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			slog.Debug("Dropping malformed sandbox frame", "error", err)
			continue
		}

		if frame.isProgress() {
			return &frame, nil
		}
		if !verifyObject(c.key, obj, frame.HMAC) {
			return nil, errBadSignature
		}
		return &frame, nil
	}

	if err := c.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return nil, io.EOF
}
