package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Stage       string `json:"stage" example:"reset_finalization" doc:"Reset flow stage."`
	Email       string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Code        string `json:"code" example:"482913" doc:"One-time code from the reset email."`
	NewPassword string `json:"new_password" doc:"Replacement password."`
	OnResponse  func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "session.password_reset.finalize" }

type FinalizePasswordResetResponse struct {
	Stage   string
	Success bool
}

type passwordResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) error
}

type FinalizePasswordResetHandler struct {
	api passwordResetConfirmer
}

func NewFinalizePasswordResetHandler(api passwordResetConfirmer) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{api: api}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Stage != ResetFinalization {
		return goerrors.New("unknown or invalid stage for password reset finalization", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"stage": event.Stage})
	}

	req := PasswordResetConfirmRequest{
		Email:       event.Email,
		OTP:         event.Code,
		NewPassword: event.NewPassword,
	}
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	if err := h.api.ConfirmPasswordReset(ctx, req); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			Stage:   ResetFinalization,
			Success: true,
		})
	}

	return nil
}
