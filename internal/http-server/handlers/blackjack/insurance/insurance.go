package insurance

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/action"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/play"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Request struct {
	SessionUUID string  `json:"session_uuid" validate:"required,uuid4"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

type Response struct {
	resp.Response
	Round play.RoundView `json:"round"`
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type Insurer interface {
	TakeInsurance(ctx context.Context, session *model.Session, gameUUID string,
		amount int64) (*play.Result, error)
}

type Insurance struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  SessionFinder
	play      Insurer
}

func NewInsurance(log *slog.Logger, sessions SessionFinder, play Insurer) *Insurance {
	return &Insurance{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
		play:      play,
	}
}

func (i *Insurance) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blackjack.insurance.New"

		log := i.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := i.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		session, err := i.sessions.FindSessionByUUID(req.SessionUUID)
		if err != nil {
			log.Error("failed to find session", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find session", http.StatusInternalServerError))

			return
		}

		if session == nil {
			render.JSON(w, r, resp.Error("session not found", http.StatusNotFound))

			return
		}

		gameUUID := chi.URLParam(r, "uuid")

		result, err := i.play.TakeInsurance(r.Context(), session, gameUUID,
			converter.ConvertAmountZECToZatoshi(req.Amount))
		if err != nil {
			log.Error("failed to take insurance", sl.Err(err))

			render.JSON(w, r, action.ErrorResponse(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Round:    play.NewRoundView(result.Game, result.State),
		})
	}
}
