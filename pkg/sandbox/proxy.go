package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// egressProxy is the only network path sandboxed gears are handed: a
// loopback HTTP forward proxy (absolute-form and CONNECT) that lives for
// one call. Destinations are verified through the NetShim before dialing —
// the verified addresses are what gets dialed, so a rebinding resolver
// cannot swap targets between check and connect — and every byte crossing
// the tunnel is charged to the call budget.
type egressProxy struct {
	shim   *NetShim
	budget *budget
	gearID string

	ln     net.Listener
	server *http.Server
}

func startEgressProxy(shim *NetShim, b *budget, gearID string) (*egressProxy, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for egress proxy: %w", err)
	}

	p := &egressProxy{shim: shim, budget: b, gearID: gearID, ln: ln}
	p.server = &http.Server{Handler: p, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Debug("Egress proxy stopped", "gear_id", gearID, "error", err)
		}
	}()
	return p, nil
}

func (p *egressProxy) addr() string { return p.ln.Addr().String() }

func (p *egressProxy) close() { _ = p.server.Close() }

func (p *egressProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		p.handleConnect(w, r)
		return
	}
	p.handleForward(w, r)
}

// gateError marks a refusal by the shim, as opposed to an upstream failure.
type gateError struct{ err error }

func (e *gateError) Error() string { return e.err.Error() }
func (e *gateError) Unwrap() error { return e.err }

// dial verifies host through the shim and connects to a verified address,
// wrapping the connection for byte accounting.
func (p *egressProxy) dial(ctx context.Context, host, port string) (net.Conn, error) {
	addrs, err := p.shim.ResolveHost(ctx, host)
	if err != nil {
		return nil, &gateError{err}
	}

	d := &net.Dialer{Timeout: 10 * time.Second}
	var lastErr error
	for _, addr := range addrs {
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), port))
		if err != nil {
			lastErr = err
			continue
		}
		return &countingConn{Conn: conn, budget: p.budget}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no dialable address for %q", host)
	}
	return nil, lastErr
}

func (p *egressProxy) handleConnect(w http.ResponseWriter, r *http.Request) {
	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host, port = r.Host, "443"
	}

	upstream, err := p.dial(r.Context(), host, port)
	if err != nil {
		slog.Warn("Egress proxy refused CONNECT",
			"gear_id", p.gearID, "target", r.Host, "error", err)
		http.Error(w, err.Error(), connectStatus(err))
		return
	}
	defer upstream.Close()

	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "connection cannot be hijacked", http.StatusInternalServerError)
		return
	}
	client, buf, err := hj.Hijack()
	if err != nil {
		return
	}
	defer client.Close()

	if _, err := buf.WriteString("HTTP/1.1 200 Connection Established\r\n\r\n"); err != nil {
		return
	}
	if err := buf.Flush(); err != nil {
		return
	}

	// Relay until both directions have drained. Each finished copy half-closes
	// its destination so the peer sees EOF while the opposite direction keeps
	// flowing; tearing down on the first EOF would drop half-closed sessions.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(upstream, buf)
		closeWrite(upstream)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(client, upstream)
		closeWrite(client)
	}()
	wg.Wait()
}

// closeWrite half-closes the write side of a TCP conn, leaving reads open.
func closeWrite(c net.Conn) {
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}

func (p *egressProxy) handleForward(w http.ResponseWriter, r *http.Request) {
	if !r.URL.IsAbs() {
		http.Error(w, "proxy requires absolute-form URLs", http.StatusBadRequest)
		return
	}
	port := r.URL.Port()
	if port == "" {
		if r.URL.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return p.dial(ctx, r.URL.Hostname(), port)
		},
		DisableKeepAlives: true,
	}
	defer transport.CloseIdleConnections()

	out := r.Clone(r.Context())
	out.RequestURI = ""
	removeHopHeaders(out.Header)

	resp, err := transport.RoundTrip(out)
	if err != nil {
		slog.Warn("Egress proxy refused request",
			"gear_id", p.gearID, "url", r.URL.Redacted(), "error", err)
		http.Error(w, err.Error(), connectStatus(err))
		return
	}
	defer resp.Body.Close()

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func connectStatus(err error) int {
	var ge *gateError
	if errors.As(err, &ge) {
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

var hopHeaders = []string{
	"Connection", "Proxy-Connection", "Keep-Alive", "Proxy-Authenticate",
	"Proxy-Authorization", "Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// countingConn charges every byte crossing the tunnel to the call budget
// and fails the stream on the first breach.
type countingConn struct {
	net.Conn
	budget *budget
}

func (c *countingConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		if berr := c.budget.charge(int64(n)); berr != nil {
			_ = c.Conn.Close()
			return n, berr
		}
	}
	return n, err
}

func (c *countingConn) Write(b []byte) (int, error) {
	if err := c.budget.charge(int64(len(b))); err != nil {
		_ = c.Conn.Close()
		return 0, err
	}
	return c.Conn.Write(b)
}

// CloseWrite forwards the half-close to the underlying TCP conn.
func (c *countingConn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}
