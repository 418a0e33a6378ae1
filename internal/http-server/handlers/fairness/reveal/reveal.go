package reveal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/fairness"
	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
)

type Response struct {
	resp.Response
	SeedID     int64  `json:"seed_id"`
	ServerSeed string `json:"server_seed"`
}

type SeedRevealer interface {
	GetRevealableServerSeed(seedID int64) (string, error)
}

type Reveal struct {
	log    *slog.Logger
	stream SeedRevealer
}

func NewReveal(log *slog.Logger, stream SeedRevealer) *Reveal {
	return &Reveal{
		log:    log,
		stream: stream,
	}
}

func (rv *Reveal) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.fairness.reveal.New"

		log := rv.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		seedID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.JSON(w, r, resp.Error("invalid seed id", http.StatusBadRequest))

			return
		}

		serverSeed, err := rv.stream.GetRevealableServerSeed(seedID)
		if err != nil {
			switch {
			case errors.Is(err, fairness.ErrSeedNotFound):
				render.JSON(w, r, resp.Error("seed not found", http.StatusNotFound))
			case errors.Is(err, fairness.ErrSeedNotRevealable):
				render.JSON(w, r, resp.Error(
					"seed is still active, rotate it before revealing", http.StatusConflict))
			default:
				log.Error("failed to reveal seed", sl.Err(err))

				render.JSON(w, r, resp.Error("failed to reveal seed", http.StatusInternalServerError))
			}

			return
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			SeedID:     seedID,
			ServerSeed: serverSeed,
		})
	}
}
