package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Password reset flow stages.
const (
	ResetInit         = "reset_init"
	CodeVerification  = "code_verification"
	ResetFinalization = "reset_finalization"
)

type InitializePasswordResetMessage struct {
	Stage      string `json:"stage" example:"reset_init" doc:"Reset flow stage."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "session.password_reset" }

type InitializePasswordResetResponse struct {
	Stage   string
	Success bool
}

type passwordResetRequester interface {
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error
}

type InitializePasswordResetHandler struct {
	api passwordResetRequester
}

func NewInitializePasswordResetHandler(api passwordResetRequester) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{api: api}
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Stage != ResetInit {
		return goerrors.New("unknown or invalid stage for password reset initialization", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"stage": event.Stage})
	}

	req := PasswordResetRequest{Email: event.Email}
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	if err := h.api.RequestPasswordReset(ctx, req); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			Stage:   CodeVerification,
			Success: true,
		})
	}

	return nil
}
