// Serves registered local track files to the embedded browser

package handler

import (
	"net/http"
)

// FileHandler resolves a registered resource id back to its file. ServeFile
// gives the range support the viewer needs for indexed formats.
func (vc *ViewContext) FileHandler(w http.ResponseWriter, r *http.Request) {

	id := r.PathValue("resource_id")

	path, ok := vc.Files.Lookup(id)
	if !ok {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}
