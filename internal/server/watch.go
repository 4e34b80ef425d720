package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const watchInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from arbitrary origins in development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// watchJob streams job snapshots over a websocket until the job settles in a
// terminal state or the client goes away. Each message is a JobResponse;
// snapshots are only sent when something changed.
func (s *Server) watchJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.engine.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reads are only needed to notice the peer closing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var lastActivity, lastStatus string
	lastProcessed := -1
	for {
		job, err := s.engine.Get(r.Context(), id)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "job vanished"),
				time.Now().Add(time.Second))
			return
		}

		snapshot := jobToResponse(job)
		if snapshot.LastActivityAt != lastActivity || snapshot.Status != lastStatus || snapshot.ProcessedUnits != lastProcessed {
			lastActivity = snapshot.LastActivityAt
			lastStatus = snapshot.Status
			lastProcessed = snapshot.ProcessedUnits
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}

		if job.Status.Terminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status)),
				time.Now().Add(time.Second))
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}
