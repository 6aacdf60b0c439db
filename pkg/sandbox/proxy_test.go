package sandbox

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// permissiveShim resolves every allowed domain to the loopback upstream and
// waives the private-range policy so tests can dial httptest servers.
func permissiveShim(domains ...string) *NetShim {
	shim := staticNetShim(domains, []netip.Addr{netip.MustParseAddr("127.0.0.1")}, nil)
	shim.denyAddr = func(netip.Addr) bool { return false }
	return shim
}

func proxyClient(t *testing.T, p *egressProxy) *http.Client {
	t.Helper()
	proxyURL, err := url.Parse("http://" + p.addr())
	require.NoError(t, err)
	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		Timeout:   5 * time.Second,
	}
}

func upstreamPort(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Port()
}

func TestEgressProxyForwardsAllowedHost(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello from upstream")
	}))
	defer upstream.Close()
	port := upstreamPort(t, upstream)

	p, err := startEgressProxy(permissiveShim("upstream.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	resp, err := proxyClient(t, p).Get("http://upstream.test:" + port + "/hello")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello from upstream", string(body))
}

func TestEgressProxyRefusesDisallowedHost(t *testing.T) {
	p, err := startEgressProxy(permissiveShim("upstream.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	resp, err := proxyClient(t, p).Get("http://evil.test:8080/steal")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEgressProxyRefusesPrivateAddress(t *testing.T) {
	// Default address policy: the allowed domain resolves to loopback, which
	// is forbidden.
	shim := staticNetShim([]string{"upstream.test"},
		[]netip.Addr{netip.MustParseAddr("127.0.0.1")}, nil)

	p, err := startEgressProxy(shim, newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	resp, err := proxyClient(t, p).Get("http://upstream.test:8080/x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEgressProxyChargesRequestBytes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer upstream.Close()
	port := upstreamPort(t, upstream)

	// Far too small for even the request headers.
	bgt := newBudget(16)
	p, err := startEgressProxy(permissiveShim("upstream.test"), bgt, "web")
	require.NoError(t, err)
	defer p.close()

	resp, err := proxyClient(t, p).Get("http://upstream.test:" + port + "/hello")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.True(t, bgt.exceeded())
}

func TestEgressProxyChargesResponseBytes(t *testing.T) {
	payload := strings.Repeat("x", 64*1024)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer upstream.Close()
	port := upstreamPort(t, upstream)

	bgt := newBudget(4 * 1024)
	p, err := startEgressProxy(permissiveShim("upstream.test"), bgt, "web")
	require.NoError(t, err)
	defer p.close()

	resp, err := proxyClient(t, p).Get("http://upstream.test:" + port + "/big")
	if err == nil {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr == nil {
			assert.Less(t, len(body), len(payload))
		}
	}
	assert.True(t, bgt.exceeded())
}

func TestEgressProxyConnectTunnel(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello tunnel")
	}))
	defer upstream.Close()
	port := upstreamPort(t, upstream)

	p, err := startEgressProxy(permissiveShim("tunnel.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	conn, err := net.Dial("tcp", p.addr())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	fmt.Fprintf(conn, "CONNECT tunnel.test:%s HTTP/1.1\r\nHost: tunnel.test:%s\r\n\r\n", port, port)
	br := bufio.NewReader(conn)
	connectResp, err := http.ReadResponse(br, &http.Request{Method: http.MethodConnect})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, connectResp.StatusCode)

	fmt.Fprint(conn, "GET /x HTTP/1.1\r\nHost: tunnel.test\r\nConnection: close\r\n\r\n")
	getResp, err := http.ReadResponse(br, &http.Request{Method: http.MethodGet})
	require.NoError(t, err)
	defer getResp.Body.Close()

	body, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello tunnel", string(body))
}

func TestEgressProxyConnectHalfClose(t *testing.T) {
	// Upstream that reads until EOF before replying: the exchange only works
	// when the tunnel relays the client's half-close instead of tearing down
	// both directions as soon as one copy finishes.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		fmt.Fprintf(conn, "got %d bytes", len(data))
	}()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	p, err := startEgressProxy(permissiveShim("tunnel.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	conn, err := net.Dial("tcp", p.addr())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	fmt.Fprintf(conn, "CONNECT tunnel.test:%s HTTP/1.1\r\nHost: tunnel.test:%s\r\n\r\n", port, port)
	br := bufio.NewReader(conn)
	connectResp, err := http.ReadResponse(br, &http.Request{Method: http.MethodConnect})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, connectResp.StatusCode)

	_, err = conn.Write([]byte("ping across the tunnel"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	reply, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, "got 22 bytes", string(reply))
}

func TestEgressProxyConnectRefused(t *testing.T) {
	p, err := startEgressProxy(permissiveShim("tunnel.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	conn, err := net.Dial("tcp", p.addr())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	fmt.Fprint(conn, "CONNECT evil.test:443 HTTP/1.1\r\nHost: evil.test:443\r\n\r\n")
	resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEgressProxyRequiresAbsoluteForm(t *testing.T) {
	p, err := startEgressProxy(permissiveShim("upstream.test"), newBudget(0), "web")
	require.NoError(t, err)
	defer p.close()

	conn, err := net.Dial("tcp", p.addr())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	fmt.Fprint(conn, "GET /relative HTTP/1.1\r\nHost: upstream.test\r\n\r\n")
	resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectStatus(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, connectStatus(&gateError{errors.New("refused")}))
	assert.Equal(t, http.StatusForbidden, connectStatus(fmt.Errorf("dial: %w", &gateError{errors.New("refused")})))
	assert.Equal(t, http.StatusBadGateway, connectStatus(errors.New("connection reset")))
}
