// Package auth authenticates console requests from the session cookie,
// authorizes page requests against the menu catalog and keeps the session
// cookie sliding forward.
package auth

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/jrsteele09/go-admin-console/authz"
	"github.com/jrsteele09/go-admin-console/catalog"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MainPageCode is the page that also receives the navigation tree.
	MainPageCode = "main"
	// MenuIDParam is the query parameter naming the requested menu.
	MenuIDParam = "menuId"

	defaultBaseAPIPath = "/api"
	tracerName         = "github.com/jrsteele09/go-admin-console/auth"
)

// TokenCodec issues and parses session tokens.
type TokenCodec interface {
	session.TokenParser
	Issue(user users.SessionUser) (string, error)
	Expiry() int
}

// Authorizer decides page access for a resolved user.
type Authorizer interface {
	Authorize(ctx context.Context, user users.SessionUser, menuID *int64) (authz.Result, error)
	MenuTree(ctx context.Context, user users.SessionUser) ([]*catalog.Menu, error)
}

// Recorder receives authentication outcomes.
type Recorder interface {
	Outcome(outcome string)
	TokenIssued()
}

// Deps holds the collaborators of the Service.
type Deps struct {
	Codec      TokenCodec
	Resolver   *session.Resolver
	Authorizer Authorizer
	Users      users.Repo
}

// Result is the outcome of authenticating one request.
type Result struct {
	Authentication session.Authentication
	Attributes     session.Attributes
}

// Service is the per-request authentication entry point.
type Service struct {
	deps        Deps
	baseAPIPath string
	recorder    Recorder
	tracer      trace.Tracer
}

type ServiceOption func(*Service)

// WithBaseAPIPath sets the path prefix of API requests, which skip menu
// authorization.
func WithBaseAPIPath(p string) ServiceOption {
	return func(s *Service) {
		s.baseAPIPath = "/" + strings.Trim(p, "/")
	}
}

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = t
	}
}

func NewService(deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("[NewService] session resolver is required")
	}
	if deps.Authorizer == nil {
		return nil, errors.New("[NewService] authorizer is required")
	}
	if deps.Users == nil {
		return nil, errors.New("[NewService] users repo is required")
	}

	s := &Service{
		deps:        deps,
		baseAPIPath: defaultBaseAPIPath,
		recorder:    nopRecorder{},
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// TokenExpiry is the lifetime in seconds of the session cookie.
func (s *Service) TokenExpiry() int {
	return s.deps.Codec.Expiry()
}

// IsAPIPath reports whether urlPath is under the base API path.
func (s *Service) IsAPIPath(urlPath string) bool {
	return urlPath == s.baseAPIPath || strings.HasPrefix(urlPath, s.baseAPIPath+"/")
}

// Authenticate resolves the principal of r.
//
// Requests without a valid session come back Anonymous with the cookie
// deleted. Page requests are authorized against the requested menu and
// receive their page attributes; a denial fails with an error wrapping
// internal/errors.ErrAccessDenied. Every authenticated request gets a fresh
// session cookie.
func (s *Service) Authenticate(w http.ResponseWriter, r *http.Request) (Result, error) {
	apiPath := s.IsAPIPath(r.URL.Path)
	ctx, span := s.tracer.Start(r.Context(), "auth.Authenticate",
		trace.WithAttributes(
			attribute.String("http.path", r.URL.Path),
			attribute.Bool("auth.api_path", apiPath),
		))
	defer span.End()

	attrs := session.NewAttributes()
	user, ok := s.deps.Resolver.Resolve(w, r, attrs)
	if !ok {
		s.finish(span, metrics.OutcomeAnonymous, nil)
		return Result{Authentication: session.Anonymous, Attributes: attrs}, nil
	}
	span.SetAttributes(attribute.String("auth.user", user.UserCd))

	if !apiPath {
		err := s.pageAttributes(ctx, user, PageCode(r.URL.Path), MenuID(r), attrs)
		if apperrors.Is(err, apperrors.ErrAccessDenied) {
			s.finish(span, metrics.OutcomeDenied, err)
			return Result{Authentication: session.Anonymous, Attributes: attrs}, err
		}
		if err != nil {
			s.finish(span, metrics.OutcomeError, err)
			return Result{Authentication: session.Anonymous, Attributes: attrs}, errors.Wrap(err, "[Service Authenticate]")
		}
	}

	if err := s.SetUserEnvironments(w, r, user); err != nil {
		log.Err(err).Str("userCd", user.UserCd).Msg("failed to refresh session token")
	}

	s.finish(span, metrics.OutcomeAuthenticated, nil)
	return Result{Authentication: session.Authenticated(user), Attributes: attrs}, nil
}

func (s *Service) pageAttributes(ctx context.Context, user users.SessionUser, pageCode string, menuID *int64, attrs session.Attributes) error {
	result, err := s.deps.Authorizer.Authorize(ctx, user, menuID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAccessDenied) {
			log.Warn().Str("userCd", user.UserCd).Int64("menuId", utils.Value(menuID)).Msg("menu access denied")
		}
		return err
	}

	if result.Menu != nil {
		attrs.Set(session.AttrPageName, result.Menu.MenuNm)
	}
	if result.Program != nil {
		attrs.Set(session.AttrProgram, result.Program)
		attrs.Set(session.AttrPageRemark, result.Program.Remark)
	}
	if result.Grant != nil {
		attrs.Set(session.AttrAuthGroupMenu, result.Grant)
	}

	if err := attrs.SetJSON(session.AttrLoginUser, user); err != nil {
		return errors.Wrap(err, "[Service pageAttributes] login user")
	}
	if err := attrs.SetJSON(session.AttrScriptSession, session.NewScriptSession(user)); err != nil {
		return errors.Wrap(err, "[Service pageAttributes] script session")
	}

	if pageCode != MainPageCode {
		return nil
	}
	tree, err := s.deps.Authorizer.MenuTree(ctx, user)
	if err != nil {
		return err
	}
	return errors.Wrap(attrs.SetJSON(session.AttrMenuJSON, tree), "[Service pageAttributes] menu tree")
}

// SetUserEnvironments issues a fresh token for user and sets it as the
// session cookie with the current lifetime.
func (s *Service) SetUserEnvironments(w http.ResponseWriter, r *http.Request, user users.SessionUser) error {
	token, err := s.deps.Codec.Issue(user)
	if err != nil {
		return errors.Wrapf(err, "[Service SetUserEnvironments] user %s", user.UserCd)
	}
	s.deps.Resolver.Cookie().Set(w, r, token, s.deps.Codec.Expiry())
	s.recorder.TokenIssued()
	return nil
}

// AddAuthentication sets the session cookie for an authenticated principal
// and returns r carrying it as the current principal.
func (s *Service) AddAuthentication(w http.ResponseWriter, r *http.Request, a session.Authentication) (*http.Request, error) {
	user, ok := a.User()
	if !ok {
		return r, apperrors.Wrapf(apperrors.ErrInvalidSession, "[Service AddAuthentication] anonymous principal")
	}
	if err := s.SetUserEnvironments(w, r, user); err != nil {
		return r, err
	}
	return r.WithContext(session.WithAuthentication(r.Context(), a)), nil
}

// Login checks the credentials of userCd and, on success, authenticates the
// rest of the request as that user.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, userCd, password string) (*http.Request, error) {
	user, err := s.deps.Users.GetByUserCd(r.Context(), userCd)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return r, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "[Service Login] unknown user %q", userCd)
	}
	if err != nil {
		return r, errors.Wrap(err, "[Service Login]")
	}
	if !user.CheckPassword(password) {
		return r, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "[Service Login] user %q", userCd)
	}
	if !user.IsActive() {
		return r, apperrors.Wrapf(apperrors.ErrUserBlocked, "[Service Login] user %q", userCd)
	}

	log.Info().Str("userCd", userCd).Msg("user logged in")
	return s.AddAuthentication(w, r, session.Authenticated(user.SessionUser()))
}

// Logout deletes the session cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.deps.Resolver.Cookie().Delete(w, r)
}

func (s *Service) finish(span trace.Span, outcome string, err error) {
	s.recorder.Outcome(outcome)
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
}

// PageCode is the base name, without extension, of the last segment of
// urlPath: "/pages/system/menu.html" is "menu".
func PageCode(urlPath string) string {
	base := path.Base(urlPath)
	if base == "/" || base == "." {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// MenuID is the requested menu id of r. Missing or malformed values are nil.
func MenuID(r *http.Request) *int64 {
	return utils.Int64Ptr(r.URL.Query().Get(MenuIDParam))
}

type nopRecorder struct{}

func (nopRecorder) Outcome(string) {}
func (nopRecorder) TokenIssued()   {}
