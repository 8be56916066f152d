package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"reeldiary-server/internal/deps"
	"reeldiary-server/internal/recommend"

	pkghttpx "reeldiary-server/pkg/httpx"
	pkgrequestctx "reeldiary-server/pkg/requestctx"
)

const defaultRunTimeout = 30 * time.Minute

type triggerResponse struct {
	Success    bool                  `json:"success"`
	RunID      string                `json:"run_id"`
	Users      int                   `json:"users"`
	DurationMS int64                 `json:"duration_ms"`
	Summary    *recommend.Summary    `json:"summary,omitempty"`
	Result     *recommend.UserResult `json:"result,omitempty"`
}

// TriggerRecommendations handles POST /jobs/recommendations.
// It runs synchronously; the run keeps going if the caller disconnects.
func TriggerRecommendations(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorizedCron(r, d.CronSecret) {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("invalid or missing cron secret", nil))
			return
		}
		var userID *uuid.UUID
		if s := r.URL.Query().Get("user_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid user_id", err))
				return
			}
			userID = &id
		}

		runID := pkgrequestctx.CorrelationID(r.Context())
		if runID == "" {
			runID = xid.New().String()
		}
		timeout := d.RunTimeout
		if timeout <= 0 {
			timeout = defaultRunTimeout
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()
		start := time.Now()

		if userID != nil {
			res, err := d.Recommender.RunUser(ctx, *userID)
			if err != nil {
				writeRunError(w, r, err)
				return
			}
			pkghttpx.WriteJSON(w, http.StatusOK, triggerResponse{
				Success:    true,
				RunID:      runID,
				Users:      1,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     &res,
			})
			return
		}

		sum, err := d.Recommender.RunAll(ctx, runID)
		if err != nil {
			writeRunError(w, r, err)
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, triggerResponse{
			Success:    true,
			RunID:      sum.RunID,
			Users:      sum.Users,
			DurationMS: sum.Duration.Milliseconds(),
			Summary:    &sum,
		})
	}
}

func writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, recommend.ErrRunInProgress) {
		pkghttpx.WriteError(w, r, pkghttpx.Conflict("a recommendation run is already in progress", err))
		return
	}
	pkghttpx.WriteError(w, r, pkghttpx.Internal("recommendation run failed", err))
}
