package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/photowall/photowall"
)

// Service is the workflow surface the handlers forward to.
type Service interface {
	IssueUploadURL(ctx context.Context, req photowall.CreateUpload) (photowall.UploadAuthorization, error)
	ListPhotos(ctx context.Context) ([]photowall.Photo, error)
	DeletePhoto(ctx context.Context, key string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// Handler provides HTTP handlers for the photo-sharing workflow.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns the configured http.Handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Post("/upload-authorization", h.handleIssueUploadURL)
	r.Get("/photos", h.handleListPhotos)
	r.Delete("/photos", h.handleDeletePhoto)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

func (h *Handler) handleIssueUploadURL(w http.ResponseWriter, r *http.Request) {
	var req photowall.CreateUpload
	if err := decodeBody(r.Body, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	auth, err := h.service.IssueUploadURL(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, auth)
}

func (h *Handler) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.ListPhotos(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, photos)
}

type deleteRequest struct {
	Key string `json:"key"`
}

func (h *Handler) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeBody(r.Body, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.service.DeletePhoto(r.Context(), req.Key); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "deleted"})
}

// decodeBody decodes a JSON request body, tolerating an empty body so the
// service layer reports the missing fields instead of a parse error.
func decodeBody(body io.Reader, v any) error {
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
