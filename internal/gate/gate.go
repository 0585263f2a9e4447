// Package gate implements the shared-password check that unlocks a session.
package gate

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/iwvelando/payout-quote/internal/credentials"
	"github.com/iwvelando/payout-quote/internal/logging"
	"github.com/iwvelando/payout-quote/internal/session"
	"go.uber.org/zap"
)

// ErrDenied is returned when the submitted password does not match.
var ErrDenied = errors.New("incorrect password")

// Result is the outcome of an authentication attempt.
type Result int

const (
	Denied Result = iota
	Granted
)

func (r Result) String() string {
	if r == Granted {
		return "granted"
	}
	return "denied"
}

// Controller compares submitted passwords against the configured secret.
type Controller struct {
	secrets    credentials.Provider
	secretName string
	logger     *zap.Logger
}

// NewController creates a controller reading the reference password from
// secretName on every attempt, so a rotated secret applies immediately.
func NewController(logger *zap.Logger, secrets credentials.Provider, secretName string) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{secrets: secrets, secretName: secretName, logger: logger}
}

// Authenticate checks submitted against the reference secret. On success a
// locked session becomes unlocked; sessions already past the gate keep
// their phase. On failure the state is not touched.
func (c *Controller) Authenticate(s *session.State, submitted string) (Result, error) {
	reference, err := c.secrets.GetSecret(c.secretName)
	if err != nil || reference == "" {
		c.logger.Error("gate secret unavailable",
			zap.String("op", "gate.Authenticate"),
			zap.String("secret", c.secretName),
			zap.Error(err),
		)
		return Denied, fmt.Errorf("%w: gate secret %s unavailable", ErrDenied, c.secretName)
	}

	if subtle.ConstantTimeCompare([]byte(submitted), []byte(reference)) != 1 {
		c.logger.Info("gate denied",
			zap.String("op", "gate.Authenticate"),
			logging.Session(s.ID),
		)
		return Denied, ErrDenied
	}

	if s.Phase == session.Locked {
		s.Phase = session.Unlocked
	}
	c.logger.Info("gate granted",
		zap.String("op", "gate.Authenticate"),
		logging.Session(s.ID),
		zap.Stringer("phase", s.Phase),
	)
	return Granted, nil
}

// Logout resets the session to its initial locked form.
func (c *Controller) Logout(s *session.State) {
	s.Reset()
	c.logger.Info("session logged out",
		zap.String("op", "gate.Logout"),
		logging.Session(s.ID),
	)
}
