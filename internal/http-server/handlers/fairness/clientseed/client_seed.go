package clientseed

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
	ClientSeed  string `json:"client_seed" validate:"required,min=1,max=64"`
}

type Response struct {
	resp.Response
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type SeedSetter interface {
	SetClientSeed(ctx context.Context, sessionID int64, clientSeed string) error
}

type ClientSeed struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  SessionFinder
	stream    SeedSetter
}

func NewClientSeed(log *slog.Logger, sessions SessionFinder, stream SeedSetter) *ClientSeed {
	return &ClientSeed{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
		stream:    stream,
	}
}

func (c *ClientSeed) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.fairness.clientseed.New"

		log := c.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := c.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		session, err := c.sessions.FindSessionByUUID(req.SessionUUID)
		if err != nil {
			log.Error("failed to find session", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find session", http.StatusInternalServerError))

			return
		}

		if session == nil {
			render.JSON(w, r, resp.Error("session not found", http.StatusNotFound))

			return
		}

		if err = c.stream.SetClientSeed(r.Context(), session.ID, req.ClientSeed); err != nil {
			if errors.Is(err, fairness.ErrClientSeedLocked) {
				render.JSON(w, r, resp.TypedError(
					"client seed is locked, rotate the seed first",
					resp.CodeSeedLocked, http.StatusConflict))

				return
			}

			log.Error("failed to set client seed", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to set client seed", http.StatusInternalServerError))

			return
		}

		log.Info("client seed updated", sl.Int64("session_id", session.ID))

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
