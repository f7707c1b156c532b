package realtime

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pinsync/pinsync/internal/domain"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/reconcile"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 50 * time.Second

	// Browser clients only send control frames; anything bigger is bogus.
	maxInboundMessageSize = 512
)

// EventSource is the change-event side of a session. Satisfied by
// *Subscription; tests substitute an in-memory fake.
type EventSource interface {
	Events() <-chan domain.ChangeEvent
	Close()
}

// Message is one frame pushed to the browser.
type Message struct {
	Type      string             `json:"type"` // "snapshot" | "insert" | "delete"
	Bookmarks []*domain.Bookmark `json:"bookmarks,omitempty"`
	Bookmark  *domain.Bookmark   `json:"bookmark,omitempty"`
	ID        string             `json:"id,omitempty"`
}

// Session ties one websocket connection to one owner's reconciled view.
// It seeds the view from the snapshot, then forwards change events that
// survive reconciliation. Suppressed events (redeliveries, records the
// session already knows) are not forwarded, so the browser list mirrors
// the store and stays duplicate-free.
type Session struct {
	ownerID string
	conn    *websocket.Conn
	store   *reconcile.Store
	source  EventSource
	log     logger.Logger
}

func NewSession(ownerID string, conn *websocket.Conn, source EventSource, log logger.Logger) *Session {
	return &Session{
		ownerID: ownerID,
		conn:    conn,
		store:   reconcile.NewStore(ownerID),
		source:  source,
		log:     log,
	}
}

// Run blocks until the peer disconnects, the event source closes, or ctx is
// cancelled. The subscription and the socket are torn down together on exit.
func (s *Session) Run(ctx context.Context, snapshot []*domain.Bookmark) {
	defer s.source.Close()
	defer func() { _ = s.conn.Close() }()

	s.store.Initialize(snapshot)
	if err := s.write(Message{Type: "snapshot", Bookmarks: s.store.Bookmarks()}); err != nil {
		s.log.Warn("failed to send snapshot",
			logger.String("owner", s.ownerID),
			logger.Error(err))
		return
	}

	// Read pump: the browser sends nothing meaningful, but reading is what
	// surfaces close frames and feeds the pong handler.
	readErr := make(chan error, 1)
	go func() {
		s.conn.SetReadLimit(maxInboundMessageSize)
		_ = s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})
		for {
			if _, _, err := s.conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-s.source.Events():
			if !ok {
				return
			}
			if msg, forward := s.reconcileEvent(ev); forward {
				if err := s.write(msg); err != nil {
					s.log.Debug("session write failed",
						logger.String("owner", s.ownerID),
						logger.Error(err))
					return
				}
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("session closed unexpectedly",
					logger.String("owner", s.ownerID),
					logger.Error(err))
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// reconcileEvent applies a pushed event to the session view and reports
// whether it should be forwarded to the browser.
func (s *Session) reconcileEvent(ev domain.ChangeEvent) (Message, bool) {
	switch ev.Kind {
	case domain.EventInsert:
		if !s.store.ApplyRemoteInsert(ev.Bookmark) {
			return Message{}, false
		}
		return Message{Type: "insert", Bookmark: ev.Bookmark, ID: ev.ID}, true
	case domain.EventDelete:
		if !s.store.ApplyRemoteDelete(ev.ID) {
			return Message{}, false
		}
		return Message{Type: "delete", ID: ev.ID}, true
	default:
		return Message{}, false
	}
}

func (s *Session) write(msg Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(msg)
}
