// Package mockapi is a small stand-in for the blog backend: GET and PUT on
// /api/posts/{id}, bearer-token checks and {"msg": ...} error bodies.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postedit/internal/api"
)

// updateRequest is the PUT body as the backend validates it.
type updateRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"min=20"`
	Tags     []string `json:"tags" validate:"max=20,dive,required,max=40"`
	ImageURL string   `json:"imageUrl" validate:"omitempty,url"`
}

type Server struct {
	store    *Store
	token    string
	log      zerolog.Logger
	validate *validator.Validate
}

// NewServer serves posts from store. PUT requests must carry token as a
// bearer credential; an empty token accepts any non-empty bearer.
func NewServer(store *Store, token string, log zerolog.Logger) *Server {
	return &Server{store: store, token: token, log: log, validate: validator.New()}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.logRequests)
	apiRouter.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
	apiRouter.HandleFunc("/posts/{id}", s.getPost).Methods(http.MethodGet)
	apiRouter.Handle("/posts/{id}", s.requireToken(http.HandlerFunc(s.updatePost))).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMsg(w, http.StatusNotFound, "Not found")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		tok = strings.TrimSpace(tok)
		switch {
		case !ok || tok == "":
			writeMsg(w, http.StatusUnauthorized, "Missing bearer token")
			return
		case s.token != "" && tok != s.token:
			writeMsg(w, http.StatusUnauthorized, "Token expired or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listPosts(w http.ResponseWriter, _ *http.Request) {
	posts, err := s.store.List()
	if err != nil {
		s.log.Error().Err(err).Msg("list posts")
		writeMsg(w, http.StatusInternalServerError, "Could not list posts")
		return
	}
	if posts == nil {
		posts = []api.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(mux.Vars(r)["id"])
	if errors.Is(err, ErrNoPost) {
		writeMsg(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get post")
		writeMsg(w, http.StatusInternalServerError, "Could not load post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.Get(id); errors.Is(err, ErrNoPost) {
		writeMsg(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		s.log.Error().Err(err).Msg("get post")
		writeMsg(w, http.StatusInternalServerError, "Could not load post")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validate.Struct(req); err != nil {
		writeMsg(w, http.StatusBadRequest, validationMsg(err))
		return
	}

	p := api.Post{ID: id, Title: req.Title, Content: req.Content, Tags: req.Tags, ImageURL: req.ImageURL}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := s.store.Put(p); err != nil {
		s.log.Error().Err(err).Msg("put post")
		writeMsg(w, http.StatusInternalServerError, "Could not save post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// validationMsg turns the first validator failure into a sentence for the user.
func validationMsg(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid post"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}
