package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/atulram/Flashcard-App/internal/api"
	"github.com/atulram/Flashcard-App/internal/config"
	"github.com/atulram/Flashcard-App/internal/db"
	"github.com/atulram/Flashcard-App/internal/services"
	"github.com/atulram/Flashcard-App/internal/session"
)

func main() {
	cfg := config.Load()

	store, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer cleanup()

	client, err := buildModelClient(cfg)
	if err != nil {
		log.Fatalf("configure model client: %v", err)
	}

	pdfService := services.NewPDFService(cfg.MaxPDFPages)
	aiService := services.NewAIService(client)
	studyService := services.NewStudyService(store)

	server := api.NewServer(pdfService, aiService, studyService, cfg.MaxFileSizeMB)
	mux := http.NewServeMux()

	staticFS := http.FileServer(http.Dir("./internal/web/assets"))
	mux.Handle("/assets/", http.StripPrefix("/assets/", staticFS))

	mux.HandleFunc("/", serveFile("./internal/web/index.html"))
	mux.HandleFunc("/study/", serveFile("./internal/web/study.html"))

	mux.Handle("/upload", server.Handler())
	mux.Handle("/api/", server.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// buildModelClient picks the generation provider. Gemini wins when both are
// configured; a missing key leaves the server running with generation
// disabled rather than refusing to start.
func buildModelClient(cfg config.Config) (services.ModelClient, error) {
	if cfg.GeminiKey != "" {
		return services.NewGeminiClient(context.Background(), cfg.GeminiKey, cfg.GeminiModel)
	}
	if cfg.OpenAIKey != "" {
		return services.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIEndpoint), nil
	}
	log.Printf("no GEMINI_API_KEY or OPENAI_API_KEY set, flashcard generation is disabled")
	return nil, nil
}

func openStore(cfg config.Config) (session.Store, func(), error) {
	if cfg.SessionStore != "sqlite" {
		return session.NewMemoryStore(), func() {}, nil
	}
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return session.NewSQLiteStore(conn), func() { _ = conn.Close() }, nil
}

func serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.ServeFile(w, r, path)
	}
}
