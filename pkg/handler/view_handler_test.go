package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mydb "github.com/yumyai/ggview/pkg/db"
	"github.com/yumyai/ggview/pkg/engine"
	"github.com/yumyai/ggview/pkg/files"

	_ "modernc.org/sqlite"
)

// testRouter mirrors the route table in main so PathValue works in tests.
// The data root is seeded with the track files the test bodies reference.
func testRouter(t *testing.T) (*http.ServeMux, *ViewContext) {
	t.Helper()

	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	store := mydb.NewViewStore(conn)
	if err := store.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	data_dir := t.TempDir()
	for name, content := range map[string]string{
		"fragments.bed":   "chr17\t31531100\t31531259\tfrag1\n",
		"10x_cov.bw":      "bigwig-bytes",
		"example.bam":     "bam-bytes",
		"example.bam.bai": "bai-bytes",
	} {
		if err := os.WriteFile(filepath.Join(data_dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	vc := NewViewContext(engine.NewRegistry(), store, files.NewProvider(data_dir))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{resource_id}/{filename}", vc.FileHandler)
	mux.HandleFunc("GET /view/{view_id}", vc.ViewPageHandler)
	mux.HandleFunc("POST /api/v1/view", vc.MountViewHandler)
	mux.HandleFunc("DELETE /api/v1/view/{view_id}", vc.TeardownViewHandler)
	mux.HandleFunc("PUT /api/v1/view/{view_id}", vc.ReplaceViewHandler)
	mux.HandleFunc("GET /api/v1/view/{view_id}/config", vc.ViewConfigHandler)
	mux.HandleFunc("POST /api/v1/saved", vc.SaveViewHandler)
	mux.HandleFunc("GET /api/v1/saved", vc.ListSavedViewsHandler)
	mux.HandleFunc("GET /api/v1/saved/{name}", vc.GetSavedViewHandler)
	mux.HandleFunc("DELETE /api/v1/saved/{name}", vc.DeleteSavedViewHandler)
	mux.HandleFunc("POST /api/v1/saved/{name}/mount", vc.MountSavedViewHandler)

	return mux, vc
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "json") {
		var decoded any
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("bad json response %q: %v", rec.Body.String(), err)
		}
		payload, _ = decoded.(map[string]any)
	}
	return rec, payload
}

const mountBody = `{
	"genome": "mm10",
	"locus": "chr17:31,531,100-31,531,259",
	"tracks": ["fragments.bed", "10x_cov.bw"]
}`

func TestMountConfigTeardownFlow(t *testing.T) {

	mux, vc := testRouter(t)

	rec, payload := doJSON(t, mux, "POST", "/api/v1/view", mountBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount: %d %s", rec.Code, rec.Body.String())
	}

	id, _ := payload["view_id"].(string)
	if id == "" {
		t.Fatal("no view_id in mount response")
	}

	// Config endpoint returns the whole snapshot
	rec, _ = doJSON(t, mux, "GET", "/api/v1/view/"+id+"/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("config: %d", rec.Code)
	}

	var cfg struct {
		Genome string           `json:"genome"`
		Locus  string           `json:"locus"`
		Tracks []map[string]any `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Genome != "mm10" || cfg.Locus != "chr17:31,531,100-31,531,259" {
		t.Errorf("snapshot fields: %+v", cfg)
	}
	if len(cfg.Tracks) != 2 || cfg.Tracks[0]["type"] != "annotation" || cfg.Tracks[1]["type"] != "wig" {
		t.Errorf("tracks: %+v", cfg.Tracks)
	}

	// Page embeds the viewer
	rec, _ = doJSON(t, mux, "GET", "/view/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("page: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "igv.createBrowser") {
		t.Error("page does not embed the viewer")
	}
	if !strings.Contains(rec.Body.String(), "fragments.bed") {
		t.Error("page does not inline the config")
	}

	// Teardown releases the view
	rec, _ = doJSON(t, mux, "DELETE", "/api/v1/view/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("teardown: %d", rec.Code)
	}
	if len(vc.Engine.List()) != 0 {
		t.Fatal("live view remains after teardown")
	}

	// Second teardown finds nothing
	rec, _ = doJSON(t, mux, "DELETE", "/api/v1/view/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double teardown: %d", rec.Code)
	}

	rec, _ = doJSON(t, mux, "GET", "/api/v1/view/"+id+"/config", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("config after teardown: %d", rec.Code)
	}
}

func TestMountPairedTrack(t *testing.T) {

	mux, _ := testRouter(t)

	body := `{"genome": "hg38", "tracks": [["example.bam", "example.bam.bai"]]}`

	rec, payload := doJSON(t, mux, "POST", "/api/v1/view", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount: %d %s", rec.Code, rec.Body.String())
	}

	id := payload["view_id"].(string)
	rec, _ = doJSON(t, mux, "GET", "/api/v1/view/"+id+"/config", "")

	var cfg struct {
		Tracks []map[string]any `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Tracks) != 1 {
		t.Fatalf("want one track, got %d", len(cfg.Tracks))
	}

	// Both references survive distinctly, each rewritten to a served route
	url, _ := cfg.Tracks[0]["url"].(string)
	index, _ := cfg.Tracks[0]["indexURL"].(string)
	if !strings.HasPrefix(url, "/files/") || !strings.HasSuffix(url, "/example.bam") {
		t.Errorf("data url: %q", url)
	}
	if !strings.HasPrefix(index, "/files/") || !strings.HasSuffix(index, "/example.bam.bai") {
		t.Errorf("index url: %q", index)
	}
	if url == index {
		t.Error("data and index conflated")
	}
}

func TestLocalTrackResolution(t *testing.T) {

	mux, _ := testRouter(t)

	rec, payload := doJSON(t, mux, "POST", "/api/v1/view", mountBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount: %d %s", rec.Code, rec.Body.String())
	}
	id := payload["view_id"].(string)

	rec, _ = doJSON(t, mux, "GET", "/api/v1/view/"+id+"/config", "")

	var cfg struct {
		Tracks []map[string]any `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}

	// A bare local path never reaches the viewer raw; it is rewritten to a
	// route the browser can actually fetch.
	url, _ := cfg.Tracks[0]["url"].(string)
	if !strings.HasPrefix(url, "/files/") {
		t.Fatalf("local track not rewritten: %q", url)
	}

	rec, _ = doJSON(t, mux, "GET", url, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("serving resolved track: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "chr17") {
		t.Errorf("served content wrong: %q", rec.Body.String())
	}

	// Display name stays the filename, not the rewritten route
	if name := cfg.Tracks[0]["name"]; name != "fragments.bed" {
		t.Errorf("track name: %v", name)
	}

	// Remote URLs pass through untouched
	remote := `{"genome": "hg38", "tracks": ["https://example.org/cov.bw"]}`
	rec, payload = doJSON(t, mux, "POST", "/api/v1/view", remote)
	if rec.Code != http.StatusCreated {
		t.Fatalf("remote mount: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = doJSON(t, mux, "GET", "/api/v1/view/"+payload["view_id"].(string)+"/config", "")
	if !strings.Contains(rec.Body.String(), `"url":"https://example.org/cov.bw"`) {
		t.Errorf("remote url rewritten: %s", rec.Body.String())
	}
}

func TestMountMissingLocalFile(t *testing.T) {

	mux, vc := testRouter(t)

	body := `{"genome": "mm10", "tracks": ["no_such_file.bed"]}`

	rec, _ := doJSON(t, mux, "POST", "/api/v1/view", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for missing file, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no_such_file.bed") {
		t.Errorf("error does not name the file: %s", rec.Body.String())
	}

	// Failed mount leaves nothing live
	if len(vc.Engine.List()) != 0 {
		t.Error("failed mount left a live view")
	}
}

func TestMountRejectsBadConfig(t *testing.T) {

	mux, _ := testRouter(t)

	cases := []string{
		`{"genome": "mm10", "tracks": ["mystery.xyz"]}`,
		`{"genome": "mm10", "locus": "chr1:100-5", "tracks": []}`,
		`{"tracks": ["a.bed"]}`,
		`not json`,
	}

	for _, body := range cases {
		rec, _ := doJSON(t, mux, "POST", "/api/v1/view", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: want 400, got %d", body, rec.Code)
		}
	}
}

func TestReplaceViewFullReconstruction(t *testing.T) {

	mux, vc := testRouter(t)

	rec, payload := doJSON(t, mux, "POST", "/api/v1/view", mountBody)
	if rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}
	id := payload["view_id"].(string)

	replacement := `{"genome": "mm10", "locus": "chr2:1-1,000", "tracks": ["fragments.bed"]}`
	rec, _ = doJSON(t, mux, "PUT", "/api/v1/view/"+id, replacement)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: %d %s", rec.Code, rec.Body.String())
	}

	// Exactly one live view, carrying the replacement model
	live := vc.Engine.List()
	if len(live) != 1 {
		t.Fatalf("want one live view, got %d", len(live))
	}
	if live[0].Config.Locus[0] != "chr2:1-1,000" || len(live[0].Config.Tracks) != 1 {
		t.Errorf("residual state from first mount: %+v", live[0].Config)
	}

	// Replacing a dead view 404s
	rec, _ = doJSON(t, mux, "PUT", "/api/v1/view/nope", replacement)
	if rec.Code != http.StatusNotFound {
		t.Errorf("replace missing: %d", rec.Code)
	}
}

func TestSavedViewFlow(t *testing.T) {

	mux, vc := testRouter(t)

	saveBody := `{
		"name": "mm10-demo",
		"genome": "mm10",
		"locus": "chr17:31,531,100-31,531,259",
		"tracks": [{"url": "10x_cov.bw", "name": "10x coverage", "autoscale": true}]
	}`

	rec, _ := doJSON(t, mux, "POST", "/api/v1/saved", saveBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}

	// Listed
	rec, _ = doJSON(t, mux, "GET", "/api/v1/saved", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "mm10-demo") {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	// Retrievable, with the merged track options intact
	rec, _ = doJSON(t, mux, "GET", "/api/v1/saved/mm10-demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"autoscale":true`) {
		t.Errorf("saved config lost options: %s", rec.Body.String())
	}

	// Mountable
	rec, _ = doJSON(t, mux, "POST", "/api/v1/saved/mm10-demo/mount", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount saved: %d %s", rec.Code, rec.Body.String())
	}
	if len(vc.Engine.List()) != 1 {
		t.Fatal("saved mount did not create a live view")
	}

	// Deletable, then gone
	rec, _ = doJSON(t, mux, "DELETE", "/api/v1/saved/mm10-demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = doJSON(t, mux, "GET", "/api/v1/saved/mm10-demo", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
}
