package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/seed"
	"github.com/boostbench/ecommerce-api/testutil"
)

func TestIssueCarriesUserID(t *testing.T) {
	issuer := Issuer{Secret: []byte("s3cret"), TTL: time.Hour}

	signed, expires, err := issuer.Issue("u-42", models.RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims["user_id"])
	assert.Equal(t, models.RoleUser, claims["role"])
}

func TestCreateGuestUserHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	require.NoError(t, seed.Run(db, seed.Admin{}))

	r := gin.New()
	r.POST("/auth/guest", CreateGuestUser(db, Issuer{Secret: []byte("k"), TTL: time.Hour}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	var user models.User
	require.NoError(t, db.Preload("Roles").First(&user, "provider = ?", "guest").Error)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, models.RoleUser, user.Roles[0].Name)
}

func TestAdminToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	require.NoError(t, seed.Run(db, seed.Admin{ID: "admin-1", Email: "admin@example.com"}))

	issuer := Issuer{Secret: []byte("k"), TTL: time.Hour}
	r := gin.New()
	r.POST("/auth/admin", AdminToken(db, issuer, "admin-1"))
	r.POST("/auth/ghost", AdminToken(db, issuer, "nobody"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/admin", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"admin-1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/ghost", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
