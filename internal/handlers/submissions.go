package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/intake"
	"github.com/iamdashante1/mb/models"
)

type Submissions struct {
	svc         *intake.Service
	maxBodySize int64
	logger      *zap.Logger
}

func NewSubmissions(svc *intake.Service, maxBodySize int64, logger *zap.Logger) *Submissions {
	return &Submissions{svc: svc, maxBodySize: maxBodySize, logger: logger.With(zap.String("logger", "http"))}
}

// caller-facing wording per kind
var (
	saveFailed = map[models.Kind]string{
		models.KindRSVP:    "Unable to save message.",
		models.KindTribute: "Unable to save tribute.",
	}
	loadFailed = map[models.Kind]string{
		models.KindRSVP:    "Unable to load messages.",
		models.KindTribute: "Unable to load tributes.",
	}
)

func (h *Submissions) Submit(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.maxBodySize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
		}

		body, err := intake.Parse(r)
		if err != nil {
			h.fail(w, kind, err)
			return
		}

		sub, err := h.svc.Submit(r.Context(), kind, body)
		if err != nil {
			h.fail(w, kind, err)
			return
		}

		writeJSON(w, http.StatusCreated, sub)
	}
}

func (h *Submissions) fail(w http.ResponseWriter, kind models.Kind, err error) {
	var verr *intake.ValidationError

	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, intake.ErrBodyTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Uploads are too large.")
	default:
		h.logger.Error("unable to save submission", zap.String("kind", string(kind)), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, saveFailed[kind])
	}
}

func (h *Submissions) List(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.List(r.Context(), kind)
		if err != nil {
			h.logger.Error("unable to load submissions", zap.String("kind", string(kind)), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, loadFailed[kind])
			return
		}

		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

// AdminData returns both lists for the family dashboard. The optional q
// parameter narrows RSVPs by name or email.
func (h *Submissions) AdminData(w http.ResponseWriter, r *http.Request) {
	rsvps, tributes, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.logger.Error("unable to load data", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Unable to load data.")
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := make([]models.Submission, 0, len(rsvps))
		for _, s := range rsvps {
			if strings.Contains(strings.ToLower(s.Name+" "+s.Email), q) {
				filtered = append(filtered, s)
			}
		}
		rsvps = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rsvps":    nonNil(rsvps),
		"tributes": nonNil(tributes),
	})
}

func nonNil(list []models.Submission) []models.Submission {
	if list == nil {
		return []models.Submission{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
