// Package services – mail collaborator.
//
// Mail is a fire-and-forget notification sink: OTP and welcome mail are
// dispatched on a best-effort basis and a delivery failure must never fail
// the transaction it is attached to.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mailer delivers account notifications. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
	SendWelcome(ctx context.Context, email, username string) error
}

// LogMailer is the default Mailer: it records the would-be delivery in the
// structured log. Deployments wire a real SMTP implementation here.
type LogMailer struct{}

// SendOTP implements Mailer.
func (LogMailer) SendOTP(ctx context.Context, email, code string) error {
	log.Info().Str("email", email).Str("otp", code).Msg("otp mail dispatched")
	return nil
}

// SendWelcome implements Mailer.
func (LogMailer) SendWelcome(ctx context.Context, email, username string) error {
	log.Info().Str("email", email).Str("username", username).Msg("welcome mail dispatched")
	return nil
}

// dispatchMail runs send asynchronously and logs failures instead of
// propagating them.
func dispatchMail(name string, send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Warn().Err(err).Str("mail", name).Msg("mail delivery failed")
		}
	}()
}
