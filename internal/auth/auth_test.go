package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/domain"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

var support = domain.Identity{ID: "stf-it-1", Name: "Omar Ortiz", Email: "omar@portal.example", Role: domain.RoleSupport, Department: "IT"}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	issued, err := tm.GenerateToken(support)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := tm.ParseToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, support, claims.Identity())
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	issued, err := NewTokenManager("secret", 5).GenerateToken(support)
	require.NoError(t, err)

	_, err = NewTokenManager("other", 5).ParseToken(issued.Token)
	assert.Error(t, err)

	later := NewTokenManager("secret", 5)
	later.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = later.ParseToken(issued.Token)
	assert.Error(t, err)
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error { return errors.New("down") }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("down")
}

func newAuthApp(tm *TokenManager, store RevocationStore, roles ...domain.Role) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, store, zap.NewNop())
	app.Get("/", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.ID)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareRoleChecks(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(support)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(t, newAuthApp(tm, nil), ""))
	assert.Equal(t, http.StatusUnauthorized, doGet(t, newAuthApp(tm, nil), "garbage"))
	assert.Equal(t, http.StatusOK, doGet(t, newAuthApp(tm, nil), issued.Token))
	assert.Equal(t, http.StatusOK, doGet(t, newAuthApp(tm, nil, domain.RoleSupport, domain.RoleAdmin), issued.Token))
	assert.Equal(t, http.StatusForbidden, doGet(t, newAuthApp(tm, nil, domain.RoleAdmin), issued.Token))
}

func TestMiddlewareHonoursRevocation(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(support)
	require.NoError(t, err)

	store := NewMemoryRevocationStore()
	app := newAuthApp(tm, store)
	assert.Equal(t, http.StatusOK, doGet(t, app, issued.Token))

	require.NoError(t, store.Revoke(context.Background(), issued.ID, issued.ExpiresAt))
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, issued.Token))
}

func TestMiddlewareFailsOpenWhenRevocationStoreErrors(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(support)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(t, newAuthApp(tm, failingRevocations{}), issued.Token))
}

func TestMemoryRevocationExpires(t *testing.T) {
	store := NewMemoryRevocationStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(context.Background(), "jti", now.Add(time.Minute)))
	revoked, err := store.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	revoked, err = store.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
