package verification

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	resp "github.com/klausteuber/zcashino-sub002/internal/lib/api/response"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
	"github.com/klausteuber/zcashino-sub002/internal/verify"
)

// Request audits either a completed game by UUID or a raw revealed seed
// tuple. Exactly one of the two shapes must be present.
type Request struct {
	GameUUID string `json:"game_uuid" validate:"omitempty,uuid4"`

	ServerSeed     string `json:"server_seed" validate:"omitempty,min=1"`
	ServerSeedHash string `json:"server_seed_hash" validate:"omitempty,len=64"`
	ClientSeed     string `json:"client_seed" validate:"omitempty,max=64"`
	Nonce          int64  `json:"nonce" validate:"gte=0"`
	Version        int    `json:"version" validate:"omitempty,oneof=1 2"`
}

type GameResponse struct {
	resp.Response
	Report *verify.Report `json:"report"`
}

type TupleResponse struct {
	resp.Response
	Report *verify.TupleReport `json:"report"`
}

type GameVerifier interface {
	VerifyGame(ctx context.Context, gameUUID string) (*verify.Report, error)
	VerifyTuple(serverSeed, clientSeed, expectedHash string, nonce int64, version int) (*verify.TupleReport, error)
}

type Verification struct {
	log       *slog.Logger
	validator *validator.Validate
	verifier  GameVerifier
}

func NewVerification(log *slog.Logger, verifier GameVerifier) *Verification {
	return &Verification{
		log:       log,
		validator: validator.New(),
		verifier:  verifier,
	}
}

func (v *Verification) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verification.New"

		log := v.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err := v.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		switch {
		case req.GameUUID != "":
			v.verifyGame(w, r, log, req.GameUUID)
		case req.ServerSeed != "" && req.ServerSeedHash != "":
			v.verifyTuple(w, r, log, req)
		default:
			render.JSON(w, r, resp.Error(
				"provide either game_uuid or server_seed with server_seed_hash",
				http.StatusBadRequest))
		}
	}
}

func (v *Verification) verifyGame(w http.ResponseWriter, r *http.Request, log *slog.Logger, gameUUID string) {
	report, err := v.verifier.VerifyGame(r.Context(), gameUUID)
	if err != nil {
		switch {
		case errors.Is(err, verify.ErrGameNotFound):
			render.JSON(w, r, resp.TypedError("game not found",
				resp.CodeGameNotFound, http.StatusNotFound))
		case errors.Is(err, verify.ErrGameNotCompleted):
			render.JSON(w, r, resp.Error("game is not completed yet", http.StatusConflict))
		default:
			log.Error("failed to verify game", sl.Err(err))

			render.JSON(w, r, resp.TypedError("failed to verify game",
				resp.CodeReplayFailed, http.StatusInternalServerError))
		}

		return
	}

	render.JSON(w, r, GameResponse{
		Response: resp.OK(),
		Report:   report,
	})
}

func (v *Verification) verifyTuple(w http.ResponseWriter, r *http.Request, log *slog.Logger, req Request) {
	version := req.Version
	if version == 0 {
		version = 2
	}

	report, err := v.verifier.VerifyTuple(req.ServerSeed, req.ClientSeed,
		req.ServerSeedHash, req.Nonce, version)
	if err != nil {
		log.Error("failed to verify seed tuple", sl.Err(err))

		render.JSON(w, r, resp.Error("failed to verify seed tuple", http.StatusBadRequest))

		return
	}

	render.JSON(w, r, TupleResponse{
		Response: resp.OK(),
		Report:   report,
	})
}
