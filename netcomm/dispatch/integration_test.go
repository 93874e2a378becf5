package dispatch

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/averde/docnet/netcomm/common"
	"github.com/averde/docnet/netcomm/pool"
	"github.com/averde/docnet/netcomm/resolver"
)

// Tests in this file drive the dispatcher through the real connection pool
// and TCP transport instead of test doubles, so the classification of
// refused dials is exercised across the package seam.

// reserveAddr grabs a free TCP address and releases it again, leaving a
// port nothing listens on until a test brings its own listener up
func reserveAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("cannot reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// serveFrames answers every request frame on the listener with the given
// status and body until the listener closes
func serveFrames(ln net.Listener, status uint32, body []byte) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func(conn net.Conn) {
			defer conn.Close()
			for {
				header := make([]byte, 20)
				if _, err := io.ReadFull(conn, header); err != nil {
					return
				}
				requestID := binary.BigEndian.Uint64(header[:8])
				metaLen := binary.BigEndian.Uint32(header[12:16])
				bodyLen := binary.BigEndian.Uint32(header[16:20])
				if _, err := io.CopyN(io.Discard, conn, int64(metaLen)+int64(bodyLen)); err != nil {
					return
				}

				resp := make([]byte, 20, 20+len(body))
				binary.BigEndian.PutUint64(resp[:8], requestID)
				binary.BigEndian.PutUint32(resp[8:12], status)
				binary.BigEndian.PutUint32(resp[16:20], uint32(len(body)))
				if _, err := conn.Write(append(resp, body...)); err != nil {
					return
				}
			}
		}(conn)
	}
}

// newLiveDispatcher wires a dispatcher from the real pool, connector and
// resolver, pointing the given server id at the given address
func newLiveDispatcher(t *testing.T, serverID, addr string) *Dispatcher {
	t.Helper()
	res := resolver.NewClusterResolver()
	res.AddServer(serverID, common.Endpoint{Scheme: "tcp", Addr: addr})

	p := pool.NewConnectionPool(common.NetworkConfig{MaxOpenConnections: 4}, pool.NewTCPConnector(time.Second))
	t.Cleanup(p.Shutdown)

	return NewDispatcher(p, res, common.NewLogicalClock(), nil, NewLifecycle())
}

// TestRetryOverTCPConnectionRefused: nothing listens on the endpoint, so
// every dial is refused; the dispatch keeps retrying toward the deadline
// and finally reports a connect failure
func TestRetryOverTCPConnectionRefused(t *testing.T) {
	addr := reserveAddr(t)
	d := newLiveDispatcher(t, "PRMR-1", addr)

	start := time.Now()
	resp := waitFor(t, d.SendRequestRetry("server:PRMR-1", common.VerbGet, "/_api/version", nil, 700*time.Millisecond, nil, false))
	elapsed := time.Since(start)

	if resp.Error != common.ErrCouldNotConnect {
		t.Fatalf("expected a connect failure after retrying, got %s", resp.Error)
	}
	if elapsed < 300*time.Millisecond {
		t.Errorf("dispatch gave up after %v instead of retrying toward the deadline", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("dispatch overshot its 700ms budget by too much: %v", elapsed)
	}
}

// TestRetryOverTCPEndpointComesUp: the first dial is refused, then a server
// starts listening on the endpoint and the retry succeeds
func TestRetryOverTCPEndpointComesUp(t *testing.T) {
	addr := reserveAddr(t)
	d := newLiveDispatcher(t, "PRMR-1", addr)

	lnCh := make(chan net.Listener, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		ln, err := net.Listen("tcp", addr)
		lnCh <- ln
		if err == nil {
			serveFrames(ln, uint32(common.StatusOK), []byte(`{"result":true}`))
		}
	}()
	t.Cleanup(func() {
		if ln := <-lnCh; ln != nil {
			ln.Close()
		}
	})

	start := time.Now()
	resp := waitFor(t, d.SendRequestRetry("server:PRMR-1", common.VerbGet, "/_api/version", nil, 10*time.Second, nil, false))
	elapsed := time.Since(start)

	if !resp.Ok() {
		t.Fatalf("expected success once the endpoint came up, got %s (status %d)", resp.Error, resp.StatusCode)
	}
	if resp.StatusCode != common.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"result":true}` {
		t.Errorf("body not delivered: %q", resp.Body)
	}
	if elapsed < 200*time.Millisecond {
		t.Errorf("retry fired before the backoff floor: %v", elapsed)
	}
}
