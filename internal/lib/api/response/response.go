package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status int    `json:"status"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK = 200
)

// Machine-readable codes for the typed conditions the orchestrator surfaces.
// Clients branch on these, not on the message text.
const (
	CodeInsufficientBalance = "insufficient_balance"
	CodeSeedLocked          = "client_seed_locked"
	CodeNoCommitmentSupply  = "commitment_unavailable"
	CodeGameNotFound        = "game_not_found"
	CodeWrongOwner          = "wrong_owner"
	CodeGameCompleted       = "game_already_completed"
	CodeIllegalAction       = "illegal_action"
	CodeActionConflict      = "action_conflict"
	CodeActiveRoundOpen     = "active_round_open"
	CodeReplayFailed        = "replay_failed"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string, status int) Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status: status,
		Error:  msg,
	}
}

// TypedError carries a machine code alongside the message so resource
// contention conditions are never conflated with generic failures.
func TypedError(msg string, code string, status int) Response {
	resp := Error(msg, status)
	resp.Code = code

	return resp
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is required", err.Field()))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is below the minimum", err.Field()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is above the maximum", err.Field()))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s has an unknown value", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}

	return Response{
		Status: http.StatusBadRequest,
		Error:  strings.Join(errMsgs, ", "),
	}
}
