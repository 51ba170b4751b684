// Handlers for named view configurations kept in the store

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/yumyai/ggview/pkg/bridge"
	"github.com/yumyai/ggview/pkg/db"
	"github.com/yumyai/ggview/pkg/handler/request"
)

type SavedViewEntry struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func (vc *ViewContext) SaveViewHandler(w http.ResponseWriter, r *http.Request) {

	var req request.SaveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("saved view needs a name"))
		return
	}

	cfg, err := req.BuildConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := vc.Store.Save(r.Context(), req.Name, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, ViewResponse{Status: "ok"})
}

func (vc *ViewContext) ListSavedViewsHandler(w http.ResponseWriter, r *http.Request) {

	list, err := vc.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	entries := make([]SavedViewEntry, 0, len(list))
	for _, v := range list {
		entries = append(entries, SavedViewEntry{
			Name:      v.Name,
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, entries)
}

func (vc *ViewContext) GetSavedViewHandler(w http.ResponseWriter, r *http.Request) {

	name := r.PathValue("name")

	cfg, err := vc.Store.Get(r.Context(), name)
	if errors.Is(err, db.ViewNotExists) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

func (vc *ViewContext) DeleteSavedViewHandler(w http.ResponseWriter, r *http.Request) {

	name := r.PathValue("name")

	err := vc.Store.Delete(r.Context(), name)
	if errors.Is(err, db.ViewNotExists) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, ViewResponse{Status: "ok"})
}

// MountSavedViewHandler loads a named configuration and mounts it into a
// fresh container, same path as a direct mount afterwards.
func (vc *ViewContext) MountSavedViewHandler(w http.ResponseWriter, r *http.Request) {

	name := r.PathValue("name")

	cfg, err := vc.Store.Get(r.Context(), name)
	if errors.Is(err, db.ViewNotExists) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Stored configs keep raw paths; resolution happens per mount
	if err := vc.resolveTrackSources(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := uuid.NewString()

	teardown, err := bridge.Mount(r.Context(), vc.Engine, cfg, bridge.Container(id))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vc.putTeardown(id, teardown)

	writeJSON(w, http.StatusCreated, ViewResponse{
		Status: "ok",
		ViewID: id,
		URL:    "/view/" + id,
	})
}
