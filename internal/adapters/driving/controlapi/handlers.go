package controlapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// defaultLimit bounds list endpoints when no limit is given.
const defaultLimit = 20

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type handler struct {
	ports *Ports
}

// statusResponse is the body of GET /status.
type statusResponse struct {
	Driver domain.DriverState `json:"driver"`
	Sync   domain.SyncState   `json:"sync"`
	Queue  *domain.QueueStats `json:"queue"`
}

// health handles GET /health.
func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

// status handles GET /status.
func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ports.Queue.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, statusResponse{
		Driver: h.ports.Sync.State(),
		Sync:   h.ports.Sync.SyncState(),
		Queue:  stats,
	})
}

// listQueue handles GET /queue.
func (h *handler) listQueue(w http.ResponseWriter, r *http.Request) {
	filter := domain.ActionStatus(r.URL.Query().Get("status"))

	actions, err := h.ports.Queue.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]domain.OfflineAction, 0, len(actions))
	for i := range actions {
		if filter != "" && actions[i].Status != filter {
			continue
		}
		out = append(out, actions[i])
	}
	writeOK(w, out)
}

// enqueue handles POST /queue.
func (h *handler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req domain.EnqueueRequest
	if err := decodeBody(r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			err = badRequest("request body is required")
		}
		writeError(w, err)
		return
	}

	action, err := h.ports.Queue.Enqueue(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, action)
}

// removeAction handles DELETE /queue/{id}.
func (h *handler) removeAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.ports.Queue.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.ports.Queue.Dequeue(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// retryAction handles POST /queue/{id}/retry.
func (h *handler) retryAction(w http.ResponseWriter, r *http.Request) {
	h.retry(w, r, chi.URLParam(r, "id"))
}

// retryAll handles POST /queue/retry.
func (h *handler) retryAll(w http.ResponseWriter, r *http.Request) {
	h.retry(w, r, "")
}

func (h *handler) retry(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.ports.Queue.RetryFailed(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]int{"retried": n})
}

// syncNow handles POST /sync.
func (h *handler) syncNow(w http.ResponseWriter, r *http.Request) {
	if err := h.ports.Sync.SyncNow(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, h.ports.Sync.SyncState())
}

// drain handles POST /drain.
func (h *handler) drain(w http.ResponseWriter, r *http.Request) {
	report, err := h.ports.Sync.DrainQueue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, report)
}

// networkRequest is the body of POST /network. A missing online field
// asks the agent to probe the API instead.
type networkRequest struct {
	Online *bool `json:"online"`
}

// setNetwork handles POST /network.
func (h *handler) setNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, err)
		return
	}

	var online bool
	switch {
	case req.Online != nil:
		online = *req.Online
	case h.ports.Connectivity != nil:
		online = h.ports.Connectivity.Check(r.Context())
	default:
		writeError(w, badRequest("online is required"))
		return
	}

	h.ports.Network.HandleConnectivityChange(r.Context(), online)
	writeOK(w, h.ports.Sync.SyncState())
}

// listNotifications handles GET /notifications.
func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	unread := r.URL.Query().Get("unread") == "true"

	items, err := h.ports.Notifications.List(r.Context(), unread, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	writeOK(w, items)
}

// markRead handles POST /notifications/{id}/read.
func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.ports.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// markAllRead handles POST /notifications/read.
func (h *handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.ports.Notifications.MarkRead(r.Context(), ""); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearNotifications handles DELETE /notifications.
func (h *handler) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.ports.Notifications.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listCollections handles GET /cache.
func (h *handler) listCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := h.ports.Catalog.Collections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, infos)
}

// collectionRecords handles GET /cache/{collection}.
func (h *handler) collectionRecords(w http.ResponseWriter, r *http.Request) {
	c := domain.Collection(chi.URLParam(r, "collection"))
	if !c.IsValid() {
		writeError(w, notFound("unknown collection "+string(c)))
		return
	}

	records, err := h.ports.Catalog.Records(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]json.RawMessage, len(records))
	for i := range records {
		items[i] = records[i].Data
	}
	writeOK(w, items)
}

// history handles GET /history.
func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	kind := domain.RunKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", domain.RunFullSync, domain.RunDrain:
	default:
		writeError(w, badRequest("unknown run kind "+string(kind)))
		return
	}

	runs, err := h.ports.History.Recent(r.Context(), kind, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []domain.SyncRun{}
	}
	writeOK(w, runs)
}

// decodeBody reads a JSON body into v. An empty body yields io.EOF.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest("limit must be a positive integer")
	}
	return n, nil
}
