package action

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/play"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Request struct {
	SessionUUID string `json:"session_uuid" validate:"required,uuid4"`
	Action      string `json:"action" validate:"required,oneof=hit stand double split surrender"`
}

type Response struct {
	resp.Response
	Round play.RoundView `json:"round"`
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type ActionApplier interface {
	ApplyAction(ctx context.Context, session *model.Session, gameUUID string,
		rawAction string) (*play.Result, error)
}

type Action struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  SessionFinder
	play      ActionApplier
}

func NewAction(log *slog.Logger, sessions SessionFinder, play ActionApplier) *Action {
	return &Action{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
		play:      play,
	}
}

func (a *Action) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blackjack.action.New"

		log := a.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := a.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		session, err := a.sessions.FindSessionByUUID(req.SessionUUID)
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

		result, err := a.play.ApplyAction(r.Context(), session, gameUUID, req.Action)
		if err != nil {
			log.Error("failed to apply action",
				sl.String("action", req.Action), sl.Err(err))

			render.JSON(w, r, ErrorResponse(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Round:    play.NewRoundView(result.Game, result.State),
		})
	}
}

// ErrorResponse maps orchestrator errors onto typed API responses. Shared
// with the insurance handler, which surfaces the same conditions.
func ErrorResponse(err error) resp.Response {
	switch {
	case errors.Is(err, play.ErrGameNotFound):
		return resp.TypedError("game not found", resp.CodeGameNotFound, http.StatusNotFound)
	case errors.Is(err, play.ErrWrongOwner):
		return resp.TypedError("game belongs to another session", resp.CodeWrongOwner, http.StatusForbidden)
	case errors.Is(err, play.ErrGameCompleted):
		return resp.TypedError("game already completed", resp.CodeGameCompleted, http.StatusConflict)
	case errors.Is(err, play.ErrActionConflict):
		return resp.TypedError("round changed under the request, reload and retry",
			resp.CodeActionConflict, http.StatusConflict)
	case errors.Is(err, play.ErrInsufficientBalance):
		return resp.TypedError("insufficient balance", resp.CodeInsufficientBalance, http.StatusUnprocessableEntity)
	case errors.Is(err, blackjack.ErrIllegalAction), errors.Is(err, blackjack.ErrWrongPhase),
		errors.Is(err, blackjack.ErrInsuranceDenied):
		return resp.TypedError(err.Error(), resp.CodeIllegalAction, http.StatusUnprocessableEntity)
	default:
		return resp.Error("failed to apply action", http.StatusInternalServerError)
	}
}
