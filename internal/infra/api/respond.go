package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/infra/logging"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError is the single place domain errors become HTTP statuses. Order
// matters: ErrInvalidPlan and ErrNotEnrolled wrap ErrNotFound, ErrNotStudent
// wraps ErrForbidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPlan):
		writeDetail(w, http.StatusBadRequest, "invalid pricing level or subscription type")
	case errors.Is(err, domain.ErrNotEnrolled):
		writeDetail(w, http.StatusNotFound, "not enrolled in this course")
	case errors.Is(err, domain.ErrNotStudent):
		writeDetail(w, http.StatusForbidden, "only students have learning paths")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidWebhook):
		writeDetail(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "could not validate credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "premium subscription required")
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeDetail(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrRateLimited):
		writeDetail(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, domain.ErrUnconfigured):
		writeDetail(w, http.StatusInternalServerError, "payment processing not configured")
	case errors.Is(err, domain.ErrGateway):
		logging.With(r.Context(), s.log).Error().Err(err).Msg("payment gateway error")
		writeDetail(w, http.StatusBadGateway, "payment processor unavailable")
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a bounded body into dst and runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: invalid %s", domain.ErrInvalidArgument, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
