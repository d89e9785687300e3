package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyOTPMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Code       string `json:"code" example:"482913" doc:"One-time code."`
	OnResponse func(resp *VerifyOTPResponse)
}

func (p VerifyOTPMessage) Type() string { return "session.otp.verify" }

type VerifyOTPResponse struct {
	Success bool
}

type otpVerifier interface {
	VerifyOTP(ctx context.Context, req OTPVerifyRequest) error
}

type VerifyOTPHandler struct {
	api otpVerifier
}

func NewVerifyOTPHandler(api otpVerifier) *VerifyOTPHandler {
	return &VerifyOTPHandler{api: api}
}

func (h *VerifyOTPHandler) Execute(ctx context.Context, event VerifyOTPMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during OTP verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyOTPHandler) execute(ctx context.Context, event VerifyOTPMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	req := OTPVerifyRequest{Email: event.Email, OTP: event.Code}
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}

	if err := h.api.VerifyOTP(ctx, req); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify OTP")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyOTPResponse{Success: true})
	}

	return nil
}
