package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
)

const sessionTTL = 30 * 24 * time.Hour

// AuthService handles phone-based identity: registration, login with
// remote restoration, and the signed session token kept in the session
// store.
//
// Identity ids are derived from the sanitized phone number, so the same
// phone always resolves to the same record on every device. That derivation
// is also what makes duplicate detection possible without a remote unique
// index.
type AuthService struct {
	eng     *engine.Engine
	remote  remote.Store // nil when no remote service is configured
	fb      *fallback.Controller
	session localstore.KV
	secret  []byte
	log     logging.Logger
}

func NewAuthService(eng *engine.Engine, rs remote.Store, fb *fallback.Controller, session localstore.KV, secret []byte, log logging.Logger) *AuthService {
	return &AuthService{
		eng:     eng,
		remote:  rs,
		fb:      fb,
		session: session,
		secret:  secret,
		log:     log.With("service", "auth"),
	}
}

// Register creates a new identity for a phone number and opens a session.
// The duplicate check runs against the local snapshot and then the remote
// store before anything is written, so a taken phone never produces a
// partial record.
func (s *AuthService) Register(ctx context.Context, name, phone, bio string) (models.User, error) {
	digits := idgen.SanitizePhone(phone)
	if digits == "" {
		return models.User{}, fmt.Errorf("phone number %q has no digits", phone)
	}
	if name == "" {
		return models.User{}, errors.New("name is required")
	}
	id := idgen.UserID(digits)

	if s.eng.State().Find(models.CollectionUsers, id) != nil {
		return models.User{}, fmt.Errorf("%w: phone already registered as %s", common.ErrDuplicateIdentity, id)
	}
	if s.remote != nil && !s.fb.Active() {
		_, err := s.remote.Get(ctx, models.CollectionUsers, id)
		switch {
		case err == nil:
			return models.User{}, fmt.Errorf("%w: phone already registered as %s", common.ErrDuplicateIdentity, id)
		case errors.Is(err, common.ErrNotFound):
			// free to register
		case errors.Is(err, common.ErrPermissionDenied):
			s.fb.Activate(ctx, "identity lookup rejected: access denied")
		default:
			return models.User{}, fmt.Errorf("failed to verify phone availability: %w", err)
		}
	}

	role := models.RoleUser
	if len(s.eng.State().Get(models.CollectionUsers)) == 0 {
		// the first member to register administers the community
		role = models.RoleAdmin
	}
	u := models.User{
		ID:     id,
		Name:   name,
		Phone:  common.PhoneCountryPrefix + digits,
		Role:   role,
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=" + id,
		Bio:    bio,
	}
	doc, err := models.ToDocument(u)
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.eng.Apply(ctx, models.CollectionUsers, engine.OpSet, doc, id); err != nil {
		return models.User{}, err
	}

	if err := s.openSession(id); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Login resolves a phone number to its identity and opens a session. When
// the record is not cached locally it is restored from the remote store, so
// a member can sign in on a fresh device.
func (s *AuthService) Login(ctx context.Context, phone string) (models.User, error) {
	digits := idgen.SanitizePhone(phone)
	if digits == "" {
		return models.User{}, fmt.Errorf("phone number %q has no digits", phone)
	}
	id := idgen.UserID(digits)

	u, ok := findAs[models.User](s.eng.State(), models.CollectionUsers, id)
	if !ok {
		restored, err := s.restore(ctx, id)
		if err != nil {
			return models.User{}, err
		}
		u = restored
	}

	if err := s.openSession(u.ID); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// restore fetches an identity record from the remote store and caches it
// locally. A permission rejection here is reported to the caller instead of
// flipping fallback mode: the user is mid-login on a device with no local
// copy, and local-only mode would leave them locked out anyway.
func (s *AuthService) restore(ctx context.Context, id string) (models.User, error) {
	if s.remote == nil || s.fb.Active() {
		return models.User{}, fmt.Errorf("%w: %s", common.ErrIdentityNotFound, id)
	}
	doc, err := s.remote.Get(ctx, models.CollectionUsers, id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return models.User{}, fmt.Errorf("%w: %s", common.ErrIdentityNotFound, id)
		case errors.Is(err, common.ErrPermissionDenied):
			return models.User{}, fmt.Errorf("account lookup rejected, sync with an administrator: %w", err)
		default:
			return models.User{}, fmt.Errorf("failed to restore account: %w", err)
		}
	}

	if _, err := s.eng.Apply(ctx, models.CollectionUsers, engine.OpSet, doc, id); err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := models.FromDocument(doc, &u); err != nil {
		return models.User{}, err
	}
	s.log.Info(ctx, "account restored from remote store", "user", id)
	return u, nil
}

// CurrentUser returns the identity of the active session, validating the
// stored token.
func (s *AuthService) CurrentUser() (models.User, error) {
	raw, ok, err := s.session.Get(common.SessionTokenKey)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, common.ErrInvalidToken
	}

	token, err := jwt.Parse(string(raw), func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.User{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return models.User{}, common.ErrInvalidToken
	}

	u, ok := findAs[models.User](s.eng.State(), models.CollectionUsers, sub)
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", common.ErrIdentityNotFound, sub)
	}
	return u, nil
}

// Logout drops the session.
func (s *AuthService) Logout() error {
	if err := s.session.Delete(common.SessionTokenKey); err != nil {
		return err
	}
	return s.session.Delete(common.CurrentUserKey)
}

func (s *AuthService) openSession(userID string) error {
	now := nowFunc().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := s.session.Set(common.SessionTokenKey, []byte(signed)); err != nil {
		return err
	}
	return s.session.Set(common.CurrentUserKey, []byte(userID))
}

// NewOTP produces the 6-digit code the login flow sends out of band.
func NewOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
