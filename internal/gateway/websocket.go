package gateway

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// DocumentEvent is one message of the document status stream
type DocumentEvent struct {
	EventType string           `json:"event_type"`
	Documents models.Documents `json:"documents"`
}

// DocumentStream pushes document state to websocket clients
type DocumentStream struct {
	documents *state.DocumentStore
	tracer    trace.Tracer
	upgrader  websocket.Upgrader
}

// NewDocumentStream creates a stream over the document store
func NewDocumentStream(documents *state.DocumentStore) *DocumentStream {
	return &DocumentStream{
		documents: documents,
		tracer:    otel.Tracer("document-stream"),
		upgrader: websocket.Upgrader{
			// The wizard UI is served from a different origin
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// StreamDocuments handles WebSocket /api/ws/documents
// @Summary Stream document status
// @Description Sends every document on connect and again after each document change
// @Tags documents
// @Success 101 "Switching Protocols"
// @Router /ws/documents [get]
func (s *DocumentStream) StreamDocuments(c *gin.Context) {
	_, span := s.tracer.Start(c.Request.Context(), "document_stream.stream")
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		log.Printf(`{"level":"error","message":"Failed to upgrade connection","error":"%v"}`, err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.documents.Subscribe()
	defer unsubscribe()

	log.Printf(`{"level":"info","message":"Document stream opened","client_ip":"%s"}`, c.ClientIP())

	if err := s.send(conn, "snapshot", s.documents.Snapshot()); err != nil {
		span.RecordError(err)
		return
	}

	// Client messages are ignored; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf(`{"level":"warn","message":"Document stream read error","error":"%v"}`, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	sent := 1
	for {
		select {
		case docs, ok := <-updates:
			if !ok {
				return
			}
			if err := s.send(conn, "update", docs); err != nil {
				span.RecordError(err)
				return
			}
			sent++
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			span.SetAttributes(attribute.Int("events.sent", sent))
			log.Printf(`{"level":"info","message":"Document stream closed","events_sent":%d}`, sent)
			return
		}
	}
}

func (s *DocumentStream) send(conn *websocket.Conn, eventType string, docs models.Documents) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(DocumentEvent{EventType: eventType, Documents: docs}); err != nil {
		log.Printf(`{"level":"warn","message":"Failed to send document event","error":"%v"}`, err)
		return err
	}
	return nil
}
