// Handlers owning the mount / teardown lifecycle of live views

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/yumyai/ggview/logger"
	"github.com/yumyai/ggview/pkg/bridge"
	"github.com/yumyai/ggview/pkg/handler/request"
	"github.com/yumyai/ggview/pkg/model"
	"github.com/yumyai/ggview/pkg/render"
	"go.uber.org/zap"
)

type ViewResponse struct {
	Status string `json:"status"`
	ViewID string `json:"view_id,omitempty"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ViewResponse{Status: "error", Error: err.Error()})
}

// resolveTrackSources rewrites local file references into served URLs before
// the snapshot reaches the engine; a missing file fails the mount. Remote
// URLs pass through untouched.
func (vc *ViewContext) resolveTrackSources(cfg *model.Config) error {

	for _, t := range cfg.Tracks {
		url, err := vc.Files.Resolve(t.URL)
		if err != nil {
			return err
		}
		t.URL = url

		if t.IndexURL != "" {
			index, err := vc.Files.Resolve(t.IndexURL)
			if err != nil {
				return err
			}
			t.IndexURL = index
		}
	}

	return nil
}

// MountViewHandler creates a fresh container, mounts the requested
// configuration into it and hands back the view id.
func (vc *ViewContext) MountViewHandler(w http.ResponseWriter, r *http.Request) {

	var req request.ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := req.BuildConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := vc.resolveTrackSources(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := uuid.NewString()

	teardown, err := bridge.Mount(r.Context(), vc.Engine, cfg, bridge.Container(id))
	if err != nil {
		// Construction failure passes through from the engine untouched
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

// TeardownViewHandler invokes the teardown handle for a live view. The
// handle is popped first, so a second DELETE sees a 404 rather than a
// double teardown.
func (vc *ViewContext) TeardownViewHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("view_id")

	teardown, ok := vc.popTeardown(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no live view "+id))
		return
	}

	if err := teardown(); err != nil {
		logger.Error("Teardown failed", zap.String("view_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, ViewResponse{Status: "ok", ViewID: id})
}

// ReplaceViewHandler is the full-reconstruction policy over HTTP: teardown
// of the old instance, then a fresh mount of the new model into the same
// container. No diffing.
func (vc *ViewContext) ReplaceViewHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("view_id")

	var req request.ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := req.BuildConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Resolve before touching the live view, so a bad replacement leaves the
	// old instance standing.
	if err := vc.resolveTrackSources(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	teardown, ok := vc.popTeardown(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no live view "+id))
		return
	}

	if err := teardown(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	fresh, err := bridge.Mount(r.Context(), vc.Engine, cfg, bridge.Container(id))
	if err != nil {
		// Old instance is already gone; the container is simply empty now.
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vc.putTeardown(id, fresh)

	writeJSON(w, http.StatusOK, ViewResponse{
		Status: "ok",
		ViewID: id,
		URL:    "/view/" + id,
	})
}

// ViewPageHandler serves the embedded browser page for a live view.
func (vc *ViewContext) ViewPageHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("view_id")

	view, ok := vc.Engine.Get(bridge.Container(id))
	if !ok {
		http.Error(w, "view not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderViewPage(w, view); err != nil {
		logger.Error("Render view page failed", zap.String("view_id", id), zap.Error(err))
	}
}

// ViewConfigHandler is the model read accessor for the browser side: the
// whole snapshot, never a partial update.
func (vc *ViewContext) ViewConfigHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("view_id")

	view, ok := vc.Engine.Get(bridge.Container(id))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no live view "+id))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view.Config)
}

// MainPage lists live and saved views.
func (vc *ViewContext) MainPage(w http.ResponseWriter, r *http.Request) {

	var saved []render.SavedEntry

	if vc.Store != nil {
		list, err := vc.Store.List(r.Context())
		if err != nil {
			logger.Error("Listing saved views failed", zap.Error(err))
		}
		for _, v := range list {
			saved = append(saved, render.SavedEntry{Name: v.Name, CreatedAt: v.CreatedAt})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderIndexPage(w, vc.Engine.List(), saved); err != nil {
		logger.Error("Render index page failed", zap.Error(err))
	}
}
