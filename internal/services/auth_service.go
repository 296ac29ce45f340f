package services

import (
	"errors"
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/jurados-presence/internal/config"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

// ErrInvalidSession is returned when the identity provider rejects a cookie
var ErrInvalidSession = errors.New("session is not valid")

// SessionValidator resolves a session cookie to the signed-in user's id
type SessionValidator interface {
	ValidateSession(redirectURL, cookie string, roles []string) (string, error)
}

// Authorizer validates sessions against the external identity provider.
// The client is created on the first request, once the redirect URL is known.
type Authorizer struct {
	cfg *config.Config
	log *zap.Logger

	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

func NewAuthorizer(cfg *config.Config, log *zap.Logger) *Authorizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authorizer{cfg: cfg, log: log}
}

// Initialized reports whether the client has been created
func (a *Authorizer) Initialized() bool {
	return a.client != nil
}

func (a *Authorizer) init(redirectURL string) error {
	a.once.Do(func() {
		if err := utils.PingAuthorizer(a.cfg.AuthzURL); err != nil {
			a.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		a.log.Info("initializing authorizer",
			zap.String("authorizer_url", a.cfg.AuthzURL),
			zap.String("client_id", a.cfg.AuthzClientID),
			zap.String("redirect_url", redirectURL))

		client, err := authorizer.NewAuthorizerClient(a.cfg.AuthzClientID, a.cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			a.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		a.client = client
	})
	return a.initErr
}

// ValidateSession validates a session cookie for the given roles and
// returns the user id
func (a *Authorizer) ValidateSession(redirectURL, cookie string, roles []string) (string, error) {
	if err := a.init(redirectURL); err != nil {
		return "", err
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil || res.User.ID == "" {
		return "", ErrInvalidSession
	}

	return res.User.ID, nil
}
