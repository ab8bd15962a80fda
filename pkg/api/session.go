package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"

	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/pkg/render"
	"github.com/dixieflatline76/halook/util/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types exchanged over /ws.
const (
	msgPing     = "ping"
	msgPong     = "pong"
	msgLoad     = "load"
	msgLoaded   = "loaded"
	msgPreview  = "preview"
	msgAccepted = "accepted"
	msgError    = "error"
)

// inbound is a client message. Load messages carry either inline image
// bytes or a path under the server's source directory. Preview messages
// carry the look and the display size.
type inbound struct {
	Type  string `json:"type"`
	Image []byte `json:"image,omitempty"`
	Path  string `json:"path,omitempty"`
	renderParams
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// outbound is a server message. A preview message is followed by one
// binary frame holding the JPEG.
type outbound struct {
	Type   string     `json:"type"`
	ID     string     `json:"id,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`
	Clip   *crop.Rect `json:"clip,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// session is one WebSocket client with its own previewer. Writes come from
// the read loop and the result forwarder, so they are serialized.
type session struct {
	server    *Server
	conn      *websocket.Conn
	writeMu   sync.Mutex
	previewer *render.Previewer
	source    image.Image
}

// handleWebSocket upgrades the connection to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := &session{
		server:    s,
		conn:      conn,
		previewer: render.NewPreviewer(s.renderer, s.cfg.PreviewFPS),
	}

	s.sessionsMu.Lock()
	s.sessions[sess] = true
	s.sessionsMu.Unlock()

	defer func() {
		s.sessionsMu.Lock()
		delete(s.sessions, sess)
		s.sessionsMu.Unlock()
	}()

	sess.previewer.Start()
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		sess.forwardResults(r.Context())
	}()

	sess.readLoop(r.Context())

	sess.previewer.Stop()
	<-forwarded
}

func (sess *session) readLoop(ctx context.Context) {
	for {
		kind, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket read failed: %v", err)
			}
			return
		}

		if kind == websocket.BinaryMessage {
			sess.load(ctx, inbound{Type: msgLoad, Image: data})
			continue
		}

		msg := inbound{renderParams: defaultRenderParams()}
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.send(outbound{Type: msgError, Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case msgPing:
			sess.send(outbound{Type: msgPong})
		case msgLoad:
			sess.load(ctx, msg)
		case msgPreview:
			sess.preview(msg)
		default:
			sess.send(outbound{Type: msgError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
		}
	}
}

func (sess *session) load(ctx context.Context, msg inbound) {
	var img image.Image
	var err error
	switch {
	case len(msg.Image) > 0:
		img, _, err = render.Decode(ctx, msg.Image)
	case msg.Path != "" && sess.server.sources != nil:
		img, err = sess.server.sources.Get(ctx, msg.Path)
	default:
		err = render.ErrNoSource
	}
	if err != nil {
		sess.send(outbound{Type: msgError, Error: err.Error()})
		return
	}

	sess.source = img
	b := img.Bounds()
	sess.send(outbound{Type: msgLoaded, Width: b.Dx(), Height: b.Dy()})
}

func (sess *session) preview(msg inbound) {
	if sess.source == nil {
		sess.send(outbound{Type: msgError, Error: render.ErrNoSource.Error()})
		return
	}

	id := uuid.NewString()
	// Acknowledge before submitting so the ack always precedes the frame.
	sess.send(outbound{Type: msgAccepted, ID: id})

	req := msg.request()
	req.Source = sess.source
	sess.previewer.Submit(render.PreviewJob{
		ID:      id,
		Request: req,
		Bounds:  crop.Size{Width: msg.Width, Height: msg.Height},
	})
}

func (sess *session) forwardResults(ctx context.Context) {
	quality := sess.server.cfg.PreviewQuality
	for res := range sess.previewer.Results() {
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) {
				continue
			}
			sess.send(outbound{Type: msgError, ID: res.ID, Error: res.Err.Error()})
			continue
		}

		data, err := render.EncodeJPEG(ctx, res.Result.Image, quality)
		if err != nil {
			sess.send(outbound{Type: msgError, ID: res.ID, Error: err.Error()})
			continue
		}
		sess.sendFrame(outbound{
			Type:   msgPreview,
			ID:     res.ID,
			Width:  res.Result.Width,
			Height: res.Result.Height,
			Clip:   res.Result.Clip,
		}, data)
	}
}

func (sess *session) send(msg outbound) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.WriteJSON(msg); err != nil {
		log.Debugf("WebSocket write failed: %v", err)
	}
}

// sendFrame writes the header and the binary payload back to back.
func (sess *session) sendFrame(header outbound, payload []byte) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.WriteJSON(header); err != nil {
		log.Debugf("WebSocket write failed: %v", err)
		return
	}
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		log.Debugf("WebSocket write failed: %v", err)
	}
}
