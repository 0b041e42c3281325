package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/otp"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/token"
)

// VerifyOTPInput is checked in order inside VerifyOTP, not by tags.
type VerifyOTPInput struct {
	OTP      string `json:"otp"`
	Password string `json:"password"`
	OTPToken string `json:"otpToken"`
	ClientIP string `json:"-"`
}

type VerifyOTPOutput struct {
	Token     string
	ExpiresAt time.Time
}

// VerifyOTP checks the submitted code against the current challenge and
// exchanges it for a session token. The first failing check wins.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	key := clientKey(in.ClientIP)

	if !s.credential.Match(in.Password) {
		slog.WarnContext(ctx, "password re-check failed on otp verify", "client_key", key)
		return nil, ErrSessionInvalid
	}

	if !otp.ValidFormat(in.OTP) {
		return nil, ErrInvalidFormat
	}

	ch, err := s.pendingChallenge(ctx, in.OTPToken)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repoStore.IncrChallengeAttempts(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, ErrNoPendingChallenge
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo increment challenge attempts", "error", err)
		return nil, goerror.NewServer(err)
	}

	if attempts > s.otpMaxAttempts() {
		slog.WarnContext(ctx, "otp attempts exceeded", "client_key", key, "attempts", attempts)
		s.discardChallenge(ctx)
		return nil, ErrTooManyAttempts
	}

	if ch.Expired(s.clock.Now()) {
		s.discardChallenge(ctx)
		return nil, ErrExpired
	}

	claims, err := s.otpCodec.Verify(in.OTPToken)
	if errors.Is(err, token.ErrTokenExpired) {
		s.discardChallenge(ctx)
		return nil, ErrExpired
	}
	if err != nil {
		slog.WarnContext(ctx, "otp token rejected", "client_key", key, "error", err)
		s.discardChallenge(ctx)
		return nil, ErrNoPendingChallenge
	}

	nonce, _ := claims.Payload["nonce"].(string)
	codeHash, _ := claims.Payload["code_hash"].(string)
	if nonce == "" || codeHash == "" {
		s.discardChallenge(ctx)
		return nil, ErrNoPendingChallenge
	}

	if !s.hmac.Verify(codeHash, nonce+":"+in.OTP) {
		slog.WarnContext(ctx, "otp code not match", "client_key", key, "attempts", attempts)
		return nil, ErrInvalidCode
	}

	s.discardChallenge(ctx)

	sessionToken, err := s.session.Issue()
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresAt := s.clock.Now().Add(s.session.TTL()).Truncate(time.Second)

	if err := s.repoMessaging.PublishLoginSucceeded(ctx, LoginSucceededEvent{
		ClientKey: key,
		Subject:   s.session.Subject(),
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish login succeeded", "client_key", key, "error", err)
	}

	return &VerifyOTPOutput{Token: sessionToken, ExpiresAt: expiresAt}, nil
}

func (s *Usecase) pendingChallenge(ctx context.Context, otpToken string) (*entity.Challenge, error) {
	if otpToken == "" {
		return nil, ErrNoPendingChallenge
	}

	ch, err := s.repoStore.GetChallenge(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, ErrNoPendingChallenge
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.hmac.Verify(ch.TokenHash, otpToken) {
		slog.WarnContext(ctx, "otp token does not belong to the current challenge")
		return nil, ErrNoPendingChallenge
	}

	return ch, nil
}

func (s *Usecase) discardChallenge(ctx context.Context) {
	if err := s.repoStore.DeleteChallenge(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete challenge", "error", err)
	}
}
