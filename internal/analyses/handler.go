package analyses

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/JaimeStill/crediscope/pkg/handlers"
	"github.com/JaimeStill/crediscope/pkg/pagination"
	"github.com/JaimeStill/crediscope/pkg/routes"
)

// CacheHeader reports how the result cache served a request.
const CacheHeader = "X-Cache"

// Handler provides HTTP endpoints for analysis operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and image upload limit in bytes.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "analyses"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analyses",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Analyze},
			{Method: "POST", Pattern: "/image", Handler: h.AnalyzeImage},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{fingerprint}", Handler: h.Find},
		},
	}
}

// Analyze verifies text or URL content from a JSON AnalyzeCommand body.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var cmd AnalyzeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sys.Analyze(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respond(w, resp)
}

// AnalyzeImage verifies the text in an uploaded image. It accepts a multipart
// form with an "image" file or a JSON ImageCommand with base64 image data.
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.imageCommand(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp, err := h.sys.AnalyzeImage(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respond(w, resp)
}

// List returns a paginated analysis history with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the latest stored result for a fingerprint path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Find(r.Context(), r.PathValue("fingerprint"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respond(w http.ResponseWriter, resp *Response) {
	w.Header().Set(CacheHeader, string(resp.Cache))
	handlers.RespondJSON(w, http.StatusOK, resp.Result)
}

func (h *Handler) imageCommand(r *http.Request) (ImageCommand, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var cmd ImageCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			return cmd, tooLarge(err, ErrNoImage)
		}
		return cmd, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return ImageCommand{}, tooLarge(err, ErrNoImage)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return ImageCommand{}, ErrNoImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ImageCommand{}, tooLarge(err, ErrNoImage)
	}

	refresh, _ := strconv.ParseBool(r.FormValue("refresh"))

	return ImageCommand{
		Data:     data,
		Language: r.FormValue("language"),
		Refresh:  refresh,
	}, nil
}

func tooLarge(err, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrImageTooLarge
	}
	return errors.Join(fallback, err)
}
