package handlers

import (
	"log"
	"net/http"

	"choreboard/internal/service"

	"github.com/gorilla/websocket"
)

// StreamHandler bridges store subscriptions to WebSocket clients. Every
// connection gets the full current result set first, then a fresh snapshot
// after each change; the subscription is torn down when the socket closes.
type StreamHandler struct {
	familyService *service.FamilyService
	choreService  *service.ChoreService
	upgrader      websocket.Upgrader
}

// NewStreamHandler creates a new stream handler. Origin checking is
// delegated to the CORS layer in front of the mux.
func NewStreamHandler(familyService *service.FamilyService, choreService *service.ChoreService) *StreamHandler {
	return &StreamHandler{
		familyService: familyService,
		choreService:  choreService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Chores streams the active chore list
func (h *StreamHandler) Chores(w http.ResponseWriter, r *http.Request) {
	snapshots, stop, err := h.choreService.WatchActiveChores(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.serve(w, r, stop, func(send func(any) error) {
		for chores := range snapshots {
			if send(chores) != nil {
				return
			}
		}
	})
}

// Members streams the caller's family roster
func (h *StreamHandler) Members(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	self, err := h.familyService.EnsureMember(r.Context(), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	snapshots, stop, err := h.familyService.WatchMembers(r.Context(), self.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.serve(w, r, stop, func(send func(any) error) {
		for members := range snapshots {
			if send(members) != nil {
				return
			}
		}
	})
}

// Invites streams the caller's family's open invites
func (h *StreamHandler) Invites(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	self, err := h.familyService.EnsureMember(r.Context(), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	snapshots, stop, err := h.familyService.WatchPendingInvites(r.Context(), self.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.serve(w, r, stop, func(send func(any) error) {
		for invites := range snapshots {
			if send(invites) != nil {
				return
			}
		}
	})
}

// serve upgrades the connection and pumps snapshots until either side goes
// away. The read loop exists only to detect the client closing.
func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, stop func(), pump func(send func(any) error)) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading websocket: %v", err)
		stop()
		return
	}
	defer ws.Close()
	defer stop()

	go func() {
		defer stop()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pump(func(payload any) error {
		if err := ws.WriteJSON(payload); err != nil {
			log.Printf("Error writing websocket message: %v", err)
			return err
		}
		return nil
	})
}
