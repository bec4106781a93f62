// Package wsgw carries CAN frames over a websocket: one binary message per
// frame in the 16-byte SocketCAN layout. It provides both the client
// transport and a gateway handler that bridges clients onto a local bus.
package wsgw

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"panelcode-go/can"
	"panelcode-go/errcode"
)

type Transport struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	rx   chan can.Frame

	once sync.Once
	done chan struct{}
	err  error
}

type DialOptions struct {
	Username, Password string
	Timeout            time.Duration // handshake; default 10s
	InsecureSkipVerify bool          // wss:// only
}

// Dial connects to a gateway URL (ws:// or wss://).
func Dial(ctx context.Context, url string, o DialOptions) (*Transport, error) {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	d := websocket.Dialer{HandshakeTimeout: o.Timeout}
	if o.InsecureSkipVerify {
		d.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	h := http.Header{}
	if o.Username != "" && o.Password != "" {
		h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(o.Username+":"+o.Password)))
	}
	conn, resp, err := d.DialContext(ctx, url, h)
	if err != nil {
		msg := url
		if resp != nil {
			msg += " (" + resp.Status + ")"
		}
		return nil, &errcode.E{C: errcode.TransportInit, Op: "wsgw.dial", Msg: msg, Err: err}
	}
	return newTransport(conn), nil
}

func newTransport(conn *websocket.Conn) *Transport {
	t := &Transport{conn: conn, rx: make(chan can.Frame, 64), done: make(chan struct{})}
	go t.readLoop()
	return t
}

func (t *Transport) readLoop() {
	for {
		typ, data, err := t.conn.ReadMessage()
		if err != nil {
			t.fail(err)
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		var f can.Frame
		if err := f.UnmarshalBinary(data); err != nil {
			continue
		}
		select {
		case t.rx <- f:
		case <-t.done:
			return
		}
	}
}

func (t *Transport) fail(err error) {
	t.once.Do(func() {
		t.err = &errcode.E{C: errcode.Closed, Op: "wsgw.read", Err: err}
		close(t.done)
	})
}

func (t *Transport) Send(f can.Frame) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	select {
	case <-t.done:
		return errcode.Closed
	default:
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if err := t.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return errcode.Wrap(errcode.TxFailed, "wsgw.send", err)
	}
	return nil
}

func (t *Transport) Recv(ctx context.Context) (can.Frame, error) {
	select {
	case f := <-t.rx:
		return f, nil
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case <-t.done:
		return can.Frame{}, t.err
	}
}

func (t *Transport) Close() error {
	t.once.Do(func() {
		t.err = errcode.Closed
		close(t.done)
	})
	t.wmu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.wmu.Unlock()
	return t.conn.Close()
}

// Handler upgrades each request and bridges it onto a transport obtained
// from attach, until either side closes.
func Handler(attach func() (can.Transport, error)) http.Handler {
	up := websocket.Upgrader{
		ReadBufferSize:  256,
		WriteBufferSize: 256,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		local, err := attach()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer local.Close()
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		remote := newTransport(conn)
		defer remote.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go pump(ctx, cancel, local, remote)
		pump(ctx, cancel, remote, local)
	})
}

// pump copies frames from src to dst until src fails, then cancels.
func pump(ctx context.Context, cancel context.CancelFunc, src, dst can.Transport) {
	defer cancel()
	for {
		f, err := src.Recv(ctx)
		if err != nil {
			return
		}
		_ = dst.Send(f)
	}
}
