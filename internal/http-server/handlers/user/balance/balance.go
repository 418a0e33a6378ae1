package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/http-server/model"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/converter"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Response struct {
	resp.Response
	SessionUUID  string `json:"session_uuid"`
	Balance      string `json:"balance"`
	TotalWagered string `json:"total_wagered"`
	TotalWon     string `json:"total_won"`
}

type SessionFinder interface {
	FindSessionByUUID(uuidStr string) (*model.Session, error)
}

type Balance struct {
	log      *slog.Logger
	sessions SessionFinder
}

func NewBalance(log *slog.Logger, sessions SessionFinder) *Balance {
	return &Balance{
		log:      log,
		sessions: sessions,
	}
}

func (b *Balance) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.balance.New"

		log := b.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionUUID := chi.URLParam(r, "sessionUUID")

		session, err := b.sessions.FindSessionByUUID(sessionUUID)
		if err != nil {
			log.Error("failed to find session", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to find session", http.StatusInternalServerError))

			return
		}

		if session == nil {
			render.JSON(w, r, resp.Error("session not found", http.StatusNotFound))

			return
		}

		render.JSON(w, r, Response{
			Response:     resp.OK(),
			SessionUUID:  session.UUID.String(),
			Balance:      converter.ConvertAmountZatoshiToString(session.Balance),
			TotalWagered: converter.ConvertAmountZatoshiToString(session.TotalWagered),
			TotalWon:     converter.ConvertAmountZatoshiToString(session.TotalWon),
		})
	}
}
