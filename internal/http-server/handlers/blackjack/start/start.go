package start

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blackjack"
	"github.com/klausteuber/zcashino-sub002/internal/fairness"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/play"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Request struct {
	SessionUUID     string  `json:"session_uuid" validate:"required,uuid4"`
	MainBet         float64 `json:"main_bet" validate:"required,gt=0"`
	PerfectPairsBet float64 `json:"perfect_pairs_bet" validate:"gte=0"`
	ClientSeed      string  `json:"client_seed" validate:"omitempty,max=64"`
}

type Response struct {
	resp.Response
	Round play.RoundView `json:"round"`
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type Starter interface {
	StartGame(ctx context.Context, session *model.Session, mainBet, perfectPairsBet int64,
		clientSeed string) (*play.Result, error)
}

type Start struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  SessionFinder
	play      Starter
}

func NewStart(log *slog.Logger, sessions SessionFinder, play Starter) *Start {
	return &Start{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
		play:      play,
	}
}

func (s *Start) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blackjack.start.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := s.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		session, err := s.sessions.FindSessionByUUID(req.SessionUUID)
		if err != nil {
			log.Error("failed to find session", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find session", http.StatusInternalServerError))

			return
		}

		if session == nil {
			render.JSON(w, r, resp.Error("session not found", http.StatusNotFound))

			return
		}

		result, err := s.play.StartGame(r.Context(), session,
			converter.ConvertAmountZECToZatoshi(req.MainBet),
			converter.ConvertAmountZECToZatoshi(req.PerfectPairsBet),
			req.ClientSeed)
		if err != nil {
			log.Error("failed to start game", sl.Err(err))

			render.JSON(w, r, startErrorResponse(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Round:    play.NewRoundView(result.Game, result.State),
		})
	}
}

func startErrorResponse(err error) resp.Response {
	switch {
	case errors.Is(err, play.ErrInsufficientBalance):
		return resp.TypedError("insufficient balance", resp.CodeInsufficientBalance, http.StatusUnprocessableEntity)
	case errors.Is(err, fairness.ErrNoCommitmentSupply):
		return resp.TypedError("no committed seed available, retry shortly",
			resp.CodeNoCommitmentSupply, http.StatusServiceUnavailable)
	case errors.Is(err, blackjack.ErrInvalidBet), errors.Is(err, blackjack.ErrInvalidSideBet):
		return resp.Error(err.Error(), http.StatusBadRequest)
	default:
		return resp.Error("failed to start game", http.StatusInternalServerError)
	}
}
