package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/droptide/droptide-backend/api/middleware"
	"github.com/droptide/droptide-backend/api/responses"
	"github.com/droptide/droptide-backend/internal/summary"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
)

// OrderSummary serves the role-scoped aggregation with its TTL cache.
// Window bounds are RFC 3339 timestamps in the from/to query params.
func OrderSummary(svc summary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := summary.Query{}
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from timestamp"))
				return
			}
			query.From = &from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to timestamp"))
				return
			}
			query.To = &to
		}

		overview, err := svc.Overview(r.Context(), actor, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
