package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/mail"
	"coursemarket/internal/metrics"
	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

// dummyPassword is hashed once so logins for unknown emails spend the same
// bcrypt time as real ones.
const dummyPassword = "not-a-real-password"

// SignupInput is a signup request for either identity kind.
type SignupInput struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
	// Image is an optional source URL imported into object storage.
	Image *string
}

// Session is the result of a successful login.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Profile   model.Profile `json:"profile"`
}

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	IssueSession(subjectID uuid.UUID, kind auth.Kind) (string, time.Time, error)
}

// AuthService handles signup, login and profile lookups for admins and users.
type AuthService interface {
	Signup(ctx context.Context, kind auth.Kind, in SignupInput) (*model.Profile, error)
	Login(ctx context.Context, kind auth.Kind, email, password string) (*Session, error)
	Profile(ctx context.Context, caller auth.Identity) (*model.Profile, error)
}

type authService struct {
	admins    repository.AdminRepository
	users     repository.UserRepository
	hasher    *auth.PasswordHasher
	tokens    TokenIssuer
	images    ImageStore
	notifier  *Notifier
	log       logrus.FieldLogger
	dummyHash string
}

// NewAuthService creates a new authentication service. images and notifier may be nil.
func NewAuthService(
	admins repository.AdminRepository,
	users repository.UserRepository,
	hasher *auth.PasswordHasher,
	tokens TokenIssuer,
	images ImageStore,
	notifier *Notifier,
	log logrus.FieldLogger,
) (AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	return &authService{
		admins:    admins,
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		images:    images,
		notifier:  notifier,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// credential is the kind-agnostic part of an identity record needed for login.
type credential struct {
	id           uuid.UUID
	passwordHash string
	profile      model.Profile
}

// Signup validates input, rejects taken emails and creates the identity.
func (s *authService) Signup(ctx context.Context, kind auth.Kind, in SignupInput) (*model.Profile, error) {
	if !kind.Valid() {
		return nil, apperr.Internal("signup", errors.New("unknown identity kind "+string(kind)))
	}
	email := model.NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	firstname, lastname := strings.TrimSpace(in.Firstname), strings.TrimSpace(in.Lastname)
	if err := validateName("firstname", firstname); err != nil {
		return nil, err
	}
	if err := validateName("lastname", lastname); err != nil {
		return nil, err
	}

	if _, err := s.findCredential(ctx, kind, email); err == nil {
		return nil, apperr.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("check email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var profile model.Profile
	switch kind {
	case auth.KindAdmin:
		admin := &model.Admin{ID: uuid.New(), Email: email, PasswordHash: hash, Firstname: firstname, Lastname: lastname}
		err = s.admins.Create(ctx, admin)
		profile = admin.Profile()
	default:
		user := &model.User{ID: uuid.New(), Email: email, PasswordHash: hash, Firstname: firstname, Lastname: lastname}
		err = s.users.Create(ctx, user)
		profile = user.Profile()
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken.Wrap(err)
		}
		return nil, apperr.Internal("create "+string(kind), err)
	}
	// The image is imported only once the identity exists so a lost email
	// race never leaves an unreferenced object behind.
	profile.ImageRef = s.attachImage(ctx, kind, profile.ID, in.Image)

	s.log.WithFields(logrus.Fields{"kind": kind, "id": profile.ID}).Info("identity created")
	s.sendWelcome(profile)
	return &profile, nil
}

// attachImage imports src and records it on the identity. Failures are logged
// and leave the identity without an image.
func (s *authService) attachImage(ctx context.Context, kind auth.Kind, id uuid.UUID, src *string) *string {
	ref := importImage(ctx, s.images, s.log, string(kind)+"s", src)
	if ref == nil {
		return nil
	}
	var err error
	if kind == auth.KindAdmin {
		err = s.admins.SetImageRef(ctx, id, *ref)
	} else {
		err = s.users.SetImageRef(ctx, id, *ref)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("record image failed, saving without image")
		return nil
	}
	return ref
}

func (s *authService) sendWelcome(p model.Profile) {
	msg, err := mail.Welcome(p.Email, p.Firstname, p.Lastname)
	if err != nil {
		s.log.WithError(err).Warn("render welcome mail")
		return
	}
	s.notifier.Enqueue(msg)
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password fail identically.
func (s *authService) Login(ctx context.Context, kind auth.Kind, email, password string) (*Session, error) {
	if !kind.Valid() {
		return nil, apperr.Internal("login", errors.New("unknown identity kind "+string(kind)))
	}
	cred, err := s.findCredential(ctx, kind, model.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Internal("find "+string(kind), err)
		}
		_, _ = s.hasher.Verify(password, s.dummyHash)
		metrics.ObserveAuthFailure("invalid_credentials")
		return nil, apperr.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, cred.passwordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.ObserveAuthFailure("invalid_credentials")
		return nil, apperr.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueSession(cred.id, kind)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Profile: cred.profile}, nil
}

// Profile returns the caller's own profile.
func (s *authService) Profile(ctx context.Context, caller auth.Identity) (*model.Profile, error) {
	var profile model.Profile
	switch caller.Kind {
	case auth.KindAdmin:
		admin, err := s.admins.FindByID(ctx, caller.ID)
		if err != nil {
			return nil, s.lookupError(err)
		}
		profile = admin.Profile()
	case auth.KindUser:
		user, err := s.users.FindByID(ctx, caller.ID)
		if err != nil {
			return nil, s.lookupError(err)
		}
		profile = user.Profile()
	default:
		return nil, apperr.ErrWrongIdentityKind
	}
	return &profile, nil
}

func (s *authService) lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrAccountNotFound
	}
	return apperr.Internal("find account", err)
}

func (s *authService) findCredential(ctx context.Context, kind auth.Kind, email string) (*credential, error) {
	switch kind {
	case auth.KindAdmin:
		admin, err := s.admins.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &credential{id: admin.ID, passwordHash: admin.PasswordHash, profile: admin.Profile()}, nil
	case auth.KindUser:
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &credential{id: user.ID, passwordHash: user.PasswordHash, profile: user.Profile()}, nil
	default:
		return nil, apperr.ErrWrongIdentityKind
	}
}
