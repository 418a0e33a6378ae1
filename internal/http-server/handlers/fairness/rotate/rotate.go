package rotate

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/fairness"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Request struct {
	SessionUUID string `json:"session_uuid" validate:"required,uuid4"`
}

// Response reveals the retired epoch's server seed and announces the fresh
// epoch's hash. The fresh seed itself stays secret until its own rotation.
type Response struct {
	resp.Response
	RetiredSeedID     int64  `json:"retired_seed_id"`
	RevealedSeed      string `json:"revealed_seed"`
	RevealedSeedHash  string `json:"revealed_seed_hash"`
	NewSeedID         int64  `json:"new_seed_id"`
	NewSeedHash       string `json:"new_seed_hash"`
	NewSeedClientSeed string `json:"new_seed_client_seed"`
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type Rotator interface {
	RotateSeed(ctx context.Context, sessionID int64) (*model.SessionFairnessSeed, *model.SessionFairnessSeed, error)
}

type Rotate struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  SessionFinder
	stream    Rotator
}

func NewRotate(log *slog.Logger, sessions SessionFinder, stream Rotator) *Rotate {
	return &Rotate{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
		stream:    stream,
	}
}

func (rt *Rotate) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.fairness.rotate.New"

		log := rt.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := rt.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		session, err := rt.sessions.FindSessionByUUID(req.SessionUUID)
		if err != nil {
			log.Error("failed to find session", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find session", http.StatusInternalServerError))

			return
		}

		if session == nil {
			render.JSON(w, r, resp.Error("session not found", http.StatusNotFound))

			return
		}

		retired, fresh, err := rt.stream.RotateSeed(r.Context(), session.ID)
		if err != nil {
			if errors.Is(err, fairness.ErrActiveRoundOpen) {
				render.JSON(w, r, resp.TypedError(
					"finish the active round before rotating the seed",
					resp.CodeActiveRoundOpen, http.StatusConflict))

				return
			}

			if errors.Is(err, fairness.ErrNoCommitmentSupply) {
				render.JSON(w, r, resp.TypedError(
					"unable to commit a replacement seed, retry shortly",
					resp.CodeNoCommitmentSupply, http.StatusServiceUnavailable))

				return
			}

			log.Error("failed to rotate seed", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to rotate seed", http.StatusInternalServerError))

			return
		}

		log.Info("seed rotated",
			sl.Int64("session_id", session.ID),
			sl.Int64("retired_seed_id", retired.ID),
			sl.Int64("new_seed_id", fresh.ID))

		render.JSON(w, r, Response{
			Response:          resp.OK(),
			RetiredSeedID:     retired.ID,
			RevealedSeed:      retired.ServerSeed,
			RevealedSeedHash:  retired.ServerSeedHash,
			NewSeedID:         fresh.ID,
			NewSeedHash:       fresh.ServerSeedHash,
			NewSeedClientSeed: fresh.ClientSeed,
		})
	}
}
