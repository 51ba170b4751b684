package main

import (
	"context"
	"database/sql"
	"mime"
	"net/http"
	"os"
	"path"

	"github.com/joho/godotenv"

	"github.com/yumyai/ggview/internal/util"
	"github.com/yumyai/ggview/logger"
	mydb "github.com/yumyai/ggview/pkg/db"
	"github.com/yumyai/ggview/pkg/engine"
	"github.com/yumyai/ggview/pkg/files"
	"github.com/yumyai/ggview/pkg/handler"
	"github.com/yumyai/ggview/pkg/middle"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "modernc.org/sqlite"
)

func main() {

	// Establish logger
	VERSION := "0.1.0"
	LOG_LEVEL := zapcore.InfoLevel

	if err := logger.InitLogger(LOG_LEVEL); err != nil {
		panic(err)
	}

	// Try load env
	dotenvErr := godotenv.Load()

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	ggview_data := os.Getenv("GGVIEW_DATA")

	if ggview_data == "" {
		logger.Warn("No local environment (GGVIEW_DATA), using default value (./data)")
		ggview_data = "./data"
	}

	addr := os.Getenv("GGVIEW_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	db_dir := path.Join(ggview_data, "db")
	if err := util.EnsureDir(db_dir); err != nil {
		logger.Fatal("Cannot create data directory", zap.String("dir", db_dir), zap.Error(err))
	}

	ggview_sqlite := path.Join(db_dir, "ggview.db")

	// Connect to db
	db, err := sql.Open("sqlite", ggview_sqlite)
	if err != nil {
		logger.Fatal("Cannot open database", zap.String("DB_LOC", ggview_sqlite), zap.Error(err))
	}

	store := mydb.NewViewStore(db)
	if err := store.Init(context.Background()); err != nil {
		logger.Fatal("Cannot init database schema", zap.Error(err))
	}

	// Local track sources resolve against the data directory
	vc := handler.NewViewContext(engine.NewRegistry(), store, files.NewProvider(ggview_data))

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open database on", zap.String("DB_LOC", ggview_sqlite))

	mux := NewRouter(vc)

	// Apply middleware
	m := middle.LoggingMiddleware(middle.CreateMiddlewareLogger(LOG_LEVEL))
	wrapped := m(middle.RequestIDMiddleware()(mux))

	logger.Info("Server starting", zap.String("addr", addr))
	httpErr := http.ListenAndServe(addr, wrapped)
	if httpErr != nil {
		logger.Error("Error starting server:", zap.String("error message", httpErr.Error()))
	}
}

func NewRouter(vc *handler.ViewContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	mux.HandleFunc("GET /", vc.MainPage)
	mux.HandleFunc("GET /view/{view_id}", vc.ViewPageHandler)

	// View lifecycle: mount once, teardown once, replace = teardown + mount
	mux.HandleFunc("POST /api/v1/view", vc.MountViewHandler)
	mux.HandleFunc("DELETE /api/v1/view/{view_id}", vc.TeardownViewHandler)
	mux.HandleFunc("PUT /api/v1/view/{view_id}", vc.ReplaceViewHandler)
	mux.HandleFunc("GET /api/v1/view/{view_id}/config", vc.ViewConfigHandler)

	// Saved views
	mux.HandleFunc("POST /api/v1/saved", vc.SaveViewHandler)
	mux.HandleFunc("GET /api/v1/saved", vc.ListSavedViewsHandler)
	mux.HandleFunc("GET /api/v1/saved/{name}", vc.GetSavedViewHandler)
	mux.HandleFunc("DELETE /api/v1/saved/{name}", vc.DeleteSavedViewHandler)
	mux.HandleFunc("POST /api/v1/saved/{name}/mount", vc.MountSavedViewHandler)

	// Registered local track files
	mux.HandleFunc("GET /files/{resource_id}/{filename}", vc.FileHandler)

	mux.HandleFunc("GET /api/v1/health", handler.HealthCheck)

	// Static files
	setupStaticFiles(mux)

	return mux
}

// Manually add static for all route that use this
func setupStaticFiles(mux *http.ServeMux) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir("./static/"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
