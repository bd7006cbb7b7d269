package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "portfolio-backend/internal/shared/auth"
	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/users"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL           = 5 * time.Minute
)

var errUnverifiedEmail = errors.New("google account e-mail is not verified")

// UserRecorder persists the identity returned by Google.
type UserRecorder interface {
	UpsertFromAuth(ctx context.Context, user users.User) (users.User, error)
}

// GoogleConfig holds the OAuth client registration. Endpoint and UserInfoURL
// default to Google's and exist so tests can point at a fake provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirect receives ?token=<jwt> after a successful login.
	UIRedirect  string
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// GoogleService runs the admin login: redirect to Google, exchange the code,
// record the user, and hand a signed JWT back to the admin UI.
type GoogleService struct {
	oauth       *oauth2.Config
	uiRedirect  string
	userInfoURL string
	states      *stateStore
	users       UserRecorder
}

func NewGoogleService(cfg GoogleConfig, recorder UserRecorder) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	infoURL := cfg.UserInfoURL
	if infoURL == "" {
		infoURL = defaultUserInfoURL
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		uiRedirect:  cfg.UIRedirect,
		userInfoURL: infoURL,
		states:      newStateStore(),
		users:       recorder,
	}
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth/google")
	g.GET("/start", s.start)
	g.GET("/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	state := uuid.NewString()
	s.states.put(state, time.Now().Add(stateTTL))
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google.exchange_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	profile, err := s.profile(ctx, tok)
	if err != nil {
		telemetry.Warn("auth.google.profile_failed", map[string]any{"error": err.Error()})
		status, msg := http.StatusBadGateway, "failed to fetch user profile"
		if errors.Is(err, errUnverifiedEmail) {
			status, msg = http.StatusForbidden, err.Error()
		}
		respond.Error(c, status, "auth_failed", msg, nil)
		return
	}

	subject := "google:" + profile.Sub
	if s.users != nil {
		stored, err := s.users.UpsertFromAuth(ctx, users.User{
			GoogleSub: profile.Sub,
			Email:     profile.Email,
			Name:      profile.Name,
			Picture:   profile.Picture,
		})
		if err != nil {
			telemetry.Error("auth.user_upsert_failed", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record user", nil)
			return
		}
		subject = stored.ID
	}

	signed, err := sharedauth.SignJWT(sharedauth.Claims{
		Email:            profile.Email,
		Name:             profile.Name,
		Picture:          profile.Picture,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	target, err := appendToken(s.uiRedirect, signed)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.google.login", map[string]any{"user_id": subject})
	c.Redirect(http.StatusFound, target)
}

type googleProfile struct {
	Sub      string `json:"sub"`
	ID       string `json:"id"`
	Email    string `json:"email"`
	Verified *bool  `json:"verified_email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

func (s *GoogleService) profile(ctx context.Context, tok *oauth2.Token) (googleProfile, error) {
	resp, err := s.oauth.Client(ctx, tok).Get(s.userInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	// v2 userinfo returns "id"; the OIDC endpoint returns "sub".
	if p.Sub == "" {
		p.Sub = p.ID
	}
	if p.Sub == "" || p.Email == "" {
		return googleProfile{}, errors.New("userinfo missing subject or e-mail")
	}
	if p.Verified != nil && !*p.Verified {
		return googleProfile{}, errUnverifiedEmail
	}
	return p, nil
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
