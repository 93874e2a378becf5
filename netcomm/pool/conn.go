package pool

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/averde/docnet/netcomm/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// TCP Connector
// --------------------------------------------------------------------------

// tcpConnector implements the IConnector interface for TCP endpoints
type tcpConnector struct {
	dialTimeout time.Duration
}

// NewTCPConnector creates a connector dialing plain TCP connections
func NewTCPConnector(dialTimeout time.Duration) IConnector {
	return &tcpConnector{dialTimeout: dialTimeout}
}

func (c *tcpConnector) Connect(endpoint common.Endpoint) (IConnection, error) {
	conn, err := net.DialTimeout("tcp", endpoint.Addr, c.dialTimeout)
	if err != nil {
		return nil, err
	}

	tc := &tcpConnection{
		conn:         conn,
		endpoint:     endpoint,
		stopCh:       make(chan struct{}),
		requestChans: xsync.NewMapOf[uint64, chan frameResult](),
	}

	// Start the response reader
	go tc.readResponses()

	return tc, nil
}

// --------------------------------------------------------------------------
// TCP Connection
// --------------------------------------------------------------------------

// frameResult contains the outcome of a single request frame
type frameResult struct {
	errKind common.ErrorKind
	status  int
	body    []byte
}

// requestEnvelope is the frame metadata describing a request
type requestEnvelope struct {
	Verb      string            `json:"verb"`
	Path      string            `json:"path"`
	Database  string            `json:"database"`
	Headers   map[string]string `json:"headers,omitempty"`
	TimeoutMS int64             `json:"timeoutMs"`
}

// tcpConnection multiplexes many in-flight requests over one TCP connection.
// Each request frame carries a connection-unique id; a reader goroutine
// matches incoming response frames to the channel registered for that id.
type tcpConnection struct {
	conn          net.Conn
	endpoint      common.Endpoint
	stopCh        chan struct{}
	requestChans  *xsync.MapOf[uint64, chan frameResult]
	nextRequestID atomic.Uint64
	writeMu       sync.Mutex // Protects writes to the connection
	broken        atomic.Bool
	closeOnce     sync.Once
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pool.IConnection)
// --------------------------------------------------------------------------

func (c *tcpConnection) Endpoint() common.Endpoint {
	return c.endpoint
}

func (c *tcpConnection) Broken() bool {
	return c.broken.Load()
}

func (c *tcpConnection) Close() error {
	c.closeOnce.Do(func() {
		c.broken.Store(true)
		close(c.stopCh)
	})
	return c.conn.Close()
}

func (c *tcpConnection) SendRequest(req *common.Request, cb SendCallback) {
	requestID := c.nextRequestID.Add(1)

	// Register the request before writing so the reader can match the
	// response even if it arrives immediately
	respCh := make(chan frameResult, 1)
	c.requestChans.Store(requestID, respCh)

	meta, err := json.Marshal(requestEnvelope{
		Verb:      string(req.Verb),
		Path:      req.Path,
		Database:  req.Database,
		Headers:   req.Headers,
		TimeoutMS: req.Timeout.Milliseconds(),
	})
	if err != nil {
		c.requestChans.Delete(requestID)
		cb(common.ErrWriteError, req, nil)
		return
	}

	// Lock the connection only for writing. The deadline is set under the
	// lock as well, a concurrent short-timeout request must not shrink the
	// deadline under this write.
	c.writeMu.Lock()
	if req.Timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(req.Timeout))
	}
	err = writeFrame(c.conn, requestID, 0, meta, req.Payload)
	c.writeMu.Unlock()

	if err != nil {
		c.requestChans.Delete(requestID)
		c.broken.Store(true)
		cb(common.ErrWriteError, req, nil)
		return
	}

	// Wait for the response without blocking the caller
	go func() {
		var timeoutCh <-chan time.Time
		if req.Timeout > 0 {
			timer := time.NewTimer(req.Timeout)
			defer timer.Stop()
			timeoutCh = timer.C
		}

		select {
		case result := <-respCh:
			if result.errKind != common.ErrNoError {
				cb(result.errKind, req, nil)
				return
			}
			cb(common.ErrNoError, req, &common.Response{
				Error:      common.ErrNoError,
				StatusCode: result.status,
				Body:       result.body,
			})
		case <-timeoutCh:
			c.requestChans.Delete(requestID)
			cb(common.ErrTimeout, req, nil)
		case <-c.stopCh:
			c.requestChans.Delete(requestID)
			cb(common.ErrConnectionClosed, req, nil)
		}
	}()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readResponses reads response frames in a loop and distributes them to
// the in-flight requests
func (c *tcpConnection) readResponses() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		requestID, status, _, body, err := readFrame(c.conn)
		if err != nil {
			// The connection is unusable, fail everything in flight
			c.broken.Store(true)
			c.failPending(common.ErrConnectionClosed)
			return
		}

		respCh, found := c.requestChans.LoadAndDelete(requestID)
		if !found {
			Logger.Warningf("received response for unknown request id %d from %s", requestID, c.endpoint)
			continue
		}

		respCh <- frameResult{errKind: common.ErrNoError, status: int(status), body: body}
	}
}

// failPending delivers an error to every in-flight request
func (c *tcpConnection) failPending(kind common.ErrorKind) {
	c.requestChans.Range(func(id uint64, ch chan frameResult) bool {
		if _, loaded := c.requestChans.LoadAndDelete(id); loaded {
			ch <- frameResult{errKind: kind}
		}
		return true
	})
}

// --------------------------------------------------------------------------
// Frame Codec
// --------------------------------------------------------------------------

// writeFrame writes a frame to the connection with the format:
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: status code (uint32, big endian, 0 for requests)
// - 4 bytes: meta length (uint32, big endian)
// - 4 bytes: body length (uint32, big endian)
// - N bytes: meta
// - M bytes: body
func writeFrame(conn net.Conn, requestID uint64, status uint32, meta, body []byte) error {
	header := make([]byte, 20)
	binary.BigEndian.PutUint64(header[:8], requestID)
	binary.BigEndian.PutUint32(header[8:12], status)
	binary.BigEndian.PutUint32(header[12:16], uint32(len(meta)))
	binary.BigEndian.PutUint32(header[16:20], uint32(len(body)))

	b := net.Buffers{header, meta, body}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a single frame from the connection
func readFrame(conn net.Conn) (requestID uint64, status uint32, meta, body []byte, err error) {
	header := make([]byte, 20)
	if _, err = io.ReadFull(conn, header); err != nil {
		return 0, 0, nil, nil, err
	}

	requestID = binary.BigEndian.Uint64(header[:8])
	status = binary.BigEndian.Uint32(header[8:12])
	metaLen := binary.BigEndian.Uint32(header[12:16])
	bodyLen := binary.BigEndian.Uint32(header[16:20])

	const maxFrameSize = 512 * 1024 * 1024
	if metaLen > maxFrameSize || bodyLen > maxFrameSize {
		return 0, 0, nil, nil, fmt.Errorf("oversized frame: meta=%d body=%d", metaLen, bodyLen)
	}

	if metaLen > 0 {
		meta = make([]byte, metaLen)
		if _, err = io.ReadFull(conn, meta); err != nil {
			return 0, 0, nil, nil, err
		}
	}
	if bodyLen > 0 {
		body = make([]byte, bodyLen)
		if _, err = io.ReadFull(conn, body); err != nil {
			return 0, 0, nil, nil, err
		}
	}

	return requestID, status, meta, body, nil
}
