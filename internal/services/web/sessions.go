package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
)

// errSessionRevoked reports a token whose session was ended before expiry.
var errSessionRevoked = fmt.Errorf("%w: session revoked", session.ErrInvalid)

// sessionService verifies signed tokens and consults the revocation list.
type sessionService struct {
	manager     *session.Manager
	revocations webstorage.SessionRevocations
	now         func() time.Time
}

func newSessionService(manager *session.Manager, revocations webstorage.SessionRevocations) sessionService {
	return sessionService{manager: manager, revocations: revocations, now: time.Now}
}

// VerifySession returns the principal of a valid, unrevoked token.
func (s sessionService) VerifySession(ctx context.Context, token string) (session.Principal, error) {
	if s.manager == nil {
		return session.Principal{}, errors.New("session manager is not configured")
	}
	principal, err := s.manager.Verify(token)
	if err != nil {
		return session.Principal{}, err
	}
	if s.revocations == nil {
		return principal, nil
	}
	revoked, err := s.revocations.IsSessionRevoked(ctx, principal.SessionID)
	if err != nil {
		return session.Principal{}, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return session.Principal{}, errSessionRevoked
	}
	return principal, nil
}

// EndSession revokes the token's session for the rest of its lifetime.
func (s sessionService) EndSession(ctx context.Context, token string) error {
	if s.manager == nil {
		return errors.New("session manager is not configured")
	}
	principal, err := s.manager.Verify(token)
	if err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}
	remaining := principal.Remaining(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revocations.RevokeSession(ctx, principal.SessionID, remaining); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
