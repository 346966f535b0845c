package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"github.com/atulram/Flashcard-App/internal/services"
	"github.com/atulram/Flashcard-App/internal/session"
)

const maxMultipartMemory = 8 << 20 // 8 MB

type Server struct {
	mux            *http.ServeMux
	pdf            *services.PDFService
	ai             *services.AIService
	study          *services.StudyService
	maxUploadBytes int64
}

func NewServer(
	pdf *services.PDFService,
	ai *services.AIService,
	study *services.StudyService,
	maxFileSizeMB int,
) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		pdf:            pdf,
		ai:             ai,
		study:          study,
		maxUploadBytes: int64(maxFileSizeMB) << 20,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/upload", s.handleUpload)
	s.mux.HandleFunc("/api/session/", s.handleSessionActions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File size exceeds %dMB limit", s.maxUploadBytes>>20))
		return
	}

	log.Printf("processing file: %s (%d bytes)", header.Filename, len(data))

	text, pages, err := s.pdf.ExtractText(data)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}

	log.Printf("extracted %d characters from %d pages", len(text), pages)

	cards, err := s.ai.GenerateFlashcards(r.Context(), text)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}

	sess, err := s.study.CreateSession(r.Context(), header.Filename, cards)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}

	log.Printf("generated %d flashcards for session %s", len(sess.Cards), sess.ID)

	http.Redirect(w, r, "/study/"+sess.ID, http.StatusSeeOther)
}

func (s *Server) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleSession(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "review":
		s.handleReview(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, err := s.study.GetSession(r.Context(), id)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	case http.MethodDelete:
		if err := s.study.DeleteSession(r.Context(), id); err != nil {
			s.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

type reviewRequest struct {
	Card   int    `json:"card"`
	Rating string `json:"rating"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	rating, err := parseRating(payload.Rating)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := s.study.ReviewCard(r.Context(), id, payload.Card, rating)
	if err != nil {
		if errors.Is(err, services.ErrCardOutOfRange) {
			writeError(w, http.StatusBadRequest, "invalid card index")
			return
		}
		s.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"card": map[string]any{
			"index": payload.Card,
			"due":   card.Due,
			"state": card.State,
			"reps":  card.Reps,
		},
	})
}

// writeGenerationError maps pipeline failures to short user-facing messages.
// Internal details are logged, never returned verbatim.
func (s *Server) writeGenerationError(w http.ResponseWriter, err error) {
	log.Printf("generation error: %v", err)

	var pageErr *services.PageLimitError
	switch {
	case errors.As(err, &pageErr):
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("PDF has %d pages. Maximum allowed is %d pages.", pageErr.Pages, pageErr.Max))
	case errors.Is(err, services.ErrMalformedDocument):
		writeError(w, http.StatusBadRequest, "Failed to process PDF. Please ensure it's a text-based PDF.")
	case errors.Is(err, services.ErrInsufficientText):
		writeError(w, http.StatusBadRequest, "Could not extract sufficient text from PDF. Please ensure it contains readable text.")
	case errors.Is(err, services.ErrNoValidCards), errors.Is(err, services.ErrMalformedResponse):
		writeError(w, http.StatusBadRequest, "No flashcards could be generated from this content.")
	case errors.Is(err, services.ErrModelUnavailable), errors.Is(err, services.ErrAIUnavailable):
		writeError(w, http.StatusInternalServerError, "Failed to generate flashcards. Please try again.")
	default:
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Study session not found or expired")
		return
	}
	log.Printf("session error: %v", err)
	writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
}

func parseRating(raw string) (fsrs.Rating, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "again":
		return fsrs.Again, nil
	case "hard":
		return fsrs.Hard, nil
	case "good":
		return fsrs.Good, nil
	case "easy":
		return fsrs.Easy, nil
	default:
		return 0, fmt.Errorf("unknown rating %q", raw)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
