// Package handlers contains the HTTP handlers served by the application.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terrpan/acceptjson/internal/accept"
	"github.com/terrpan/acceptjson/internal/telemetry"
)

const jsonContent = "application/json"

// AcceptItem is one entry of the Accept header as reported by the API.
type AcceptItem struct {
	MediaType string  `json:"media_type"`
	Quality   float64 `json:"quality"`
}

// AcceptResponse describes the Accept header a handler received.
type AcceptResponse struct {
	Accept    string       `json:"accept"`
	WantsJSON bool         `json:"wants_json"`
	Items     []AcceptItem `json:"items"`
}

// ValidationError mirrors the body web frameworks return for failed validation.
type ValidationError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// APIHandler serves the routes mounted behind the acceptjson middleware.
type APIHandler struct {
	logger    *slog.Logger
	telemetry *telemetry.Helper
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(logger *slog.Logger) *APIHandler {
	return &APIHandler{
		logger:    logger,
		telemetry: telemetry.NewTelemetryHelper("acceptjson/handlers"),
	}
}

// HandleAccept reports the Accept header as seen after the middleware ran.
func (h *APIHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.telemetry.StartSpan(r.Context(), "api.accept")
	defer span.End()

	raw := strings.Join(r.Header.Values("Accept"), ",")
	header := accept.Parse(raw)

	mediaType, wants := wantsJSON(header)
	h.telemetry.SetNegotiationAttributes(span, mediaType, wants)

	items := make([]AcceptItem, 0, header.Len())
	for _, item := range header.All() {
		items = append(items, AcceptItem{MediaType: item.MediaType, Quality: item.Quality})
	}

	h.writeJSON(w, r, http.StatusOK, AcceptResponse{
		Accept:    raw,
		WantsJSON: wants,
		Items:     items,
	})

	h.logger.DebugContext(ctx, "Reported accept header", "accept", raw, "wants_json", wants)
}

// HandleValidate requires a non-empty name field. On failure clients that
// want JSON get a 422 body and everyone else is redirected back, which is
// the behavior the middleware exists to steer.
func (h *APIHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.telemetry.StartSpan(r.Context(), "api.validate")
	defer span.End()

	name := strings.TrimSpace(r.FormValue("name"))
	if name != "" {
		h.writeJSON(w, r, http.StatusOK, map[string]string{"name": name})
		return
	}

	mediaType, wants := wantsJSON(accept.Parse(strings.Join(r.Header.Values("Accept"), ",")))
	h.telemetry.SetNegotiationAttributes(span, mediaType, wants)

	if !wants {
		target := r.Referer()
		if target == "" {
			target = "/"
		}

		h.logger.InfoContext(ctx, "Validation failed, redirecting", "location", target, "preferred", mediaType)
		http.Redirect(w, r, target, http.StatusSeeOther)

		return
	}

	h.logger.InfoContext(ctx, "Validation failed", "preferred", mediaType)
	h.writeJSON(w, r, http.StatusUnprocessableEntity, ValidationError{
		Message: "The given data was invalid.",
		Errors: map[string][]string{
			"name": {"The name field is required."},
		},
	})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := writeJSON(w, status, body); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", jsonContent)
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// wantsJSON reports whether the highest ranked media type is a JSON type,
// along with that media type.
func wantsJSON(header *accept.Header) (string, bool) {
	first, ok := header.First()
	if !ok {
		return "", false
	}

	mediaType := strings.ToLower(first.MediaType)

	return first.MediaType, strings.Contains(mediaType, "/json") || strings.Contains(mediaType, "+json")
}
