package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterAccountMessage struct {
	Name       string `json:"name" example:"Pepe Rone" doc:"Display name."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Password   string `json:"password" doc:"Initial password."`
	Role       Role   `json:"role" example:"farm" doc:"Requested account role."`
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "session.register" }

// RegisterAccountResponse points the caller at the next flow stage.
// Registration never authenticates; the account verifies through the OTP
// flow and then logs in.
type RegisterAccountResponse struct {
	Email   string
	Success bool
}

type accountRegistrar interface {
	Register(ctx context.Context, req RegisterRequest) error
	CreateOTP(ctx context.Context, req OTPRequest) error
}

type RegisterAccountHandler struct {
	api accountRegistrar
}

func NewRegisterAccountHandler(api accountRegistrar) *RegisterAccountHandler {
	return &RegisterAccountHandler{api: api}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	req := RegisterRequest{
		Name:     event.Name,
		Email:    event.Email,
		Password: event.Password,
		Role:     event.Role,
	}
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	if err := h.api.Register(ctx, req); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register account")
	}

	if err := h.api.CreateOTP(ctx, OTPRequest{Email: event.Email}); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to request verification code")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			Email:   event.Email,
			Success: true,
		})
	}

	return nil
}
