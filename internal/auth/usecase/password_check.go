package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
)

// PasswordCheckInput carries no validation tags, an empty password is a failed attempt.
type PasswordCheckInput struct {
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

type PasswordCheckOutput struct {
	OTPToken  string
	ExpiresAt time.Time
}

// PasswordCheck runs the password gate for the caller address and, when the
// password matches, issues and delivers a fresh OTP challenge.
func (s *Usecase) PasswordCheck(ctx context.Context, in PasswordCheckInput) (*PasswordCheckOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordCheck")
	defer span.End()

	key := clientKey(in.ClientIP)
	if err := s.passwordGate(ctx, key, in.Password); err != nil {
		return nil, err
	}

	return s.issueOTP(ctx, key)
}

func (s *Usecase) passwordGate(ctx context.Context, key, password string) error {
	now := s.clock.Now()

	attempt, err := s.repoStore.GetLoginAttempt(ctx, key)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get login attempt", "client_key", key, "error", err)
		return goerror.NewServer(err)
	}

	if attempt != nil && attempt.Blocked(now) {
		slog.WarnContext(ctx, "login blocked for client", "client_key", key, "blocked_until", attempt.BlockedUntil)
		return ErrRateLimited
	}

	if attempt != nil && attempt.BlockLapsed(now) {
		if err := s.repoStore.ResetLoginAttempt(ctx, key); err != nil {
			slog.ErrorContext(ctx, "failed to repo reset lapsed login attempt", "client_key", key, "error", err)
			return goerror.NewServer(err)
		}
	}

	if !s.credential.Match(password) {
		return s.recordFailure(ctx, key, now)
	}

	if err := s.repoStore.ResetLoginAttempt(ctx, key); err != nil {
		slog.ErrorContext(ctx, "failed to repo reset login attempt", "client_key", key, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) recordFailure(ctx context.Context, key string, now time.Time) error {
	lockout := s.lockoutDuration()

	count, err := s.repoStore.IncrLoginFailure(ctx, key, now, lockout)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo increment login failure", "client_key", key, "error", err)
		return goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "password not match", "client_key", key, "failures", count)
	if count < s.lockoutThreshold() {
		return ErrInvalidCredential
	}

	until := now.Add(lockout)
	if err := s.repoStore.BlockLogin(ctx, key, until); err != nil {
		slog.ErrorContext(ctx, "failed to repo block login", "client_key", key, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishLoginLocked(ctx, LoginLockedEvent{
		ClientKey:    key,
		Failures:     count,
		BlockedUntil: until,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish login locked", "client_key", key, "error", err)
	}

	return ErrInvalidCredential
}

func (s *Usecase) issueOTP(ctx context.Context, key string) (*PasswordCheckOutput, error) {
	issuedAt := s.clock.Now()

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	nonce := s.uuid.Generate()
	codeHash, err := s.hmac.Hash(nonce + ":" + code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	otpToken, err := s.otpCodec.Sign(map[string]any{"nonce": nonce, "code_hash": string(codeHash)}, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign otp token", "error", err)
		return nil, goerror.NewServer(err)
	}

	tokenHash, err := s.hmac.Hash(otpToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp token", "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresAt := issuedAt.Add(ttl)

	if err := s.repoDelivery.SendOTP(ctx, code, expiresAt); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "channel", s.repoDelivery.Channel(), "error", err)

		if derr := s.repoStore.DeleteChallenge(ctx); derr != nil {
			slog.ErrorContext(ctx, "failed to repo delete challenge after delivery failure", "error", derr)
		}

		if perr := s.repoMessaging.PublishOTPDeliveryFailed(ctx, OTPDeliveryFailedEvent{
			ClientKey: key,
			Channel:   s.repoDelivery.Channel(),
			Reason:    err.Error(),
		}); perr != nil {
			slog.ErrorContext(ctx, "failed to publish otp delivery failed", "client_key", key, "error", perr)
		}

		return nil, ErrDeliveryFailed
	}

	if err := s.repoStore.SaveChallenge(ctx, entity.Challenge{
		TokenHash: string(tokenHash),
		ExpiresAt: expiresAt,
	}, 2*ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save challenge", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp challenge issued", "client_key", key, "channel", s.repoDelivery.Channel(), "expires_at", expiresAt)

	return &PasswordCheckOutput{OTPToken: otpToken, ExpiresAt: expiresAt}, nil
}

func clientKey(ip string) string {
	if ip == "" {
		return "unknown"
	}
	return ip
}
