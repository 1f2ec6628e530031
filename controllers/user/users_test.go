package userControllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/testutil"
)

func createUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Email: id + "@example.com", Name: "Old"}).Error)
}

func TestUpdateUserOnlyTouchesGivenFields(t *testing.T) {
	db := testutil.NewDB(t)
	createUser(t, db, "u1")

	name := "New"
	user, err := UpdateUser(db, "u1", UpdateUserInput{
		Name:    &name,
		Address: &models.Address{City: "Colombo", Country: "Sri Lanka"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "u1@example.com", user.Email)
	assert.Equal(t, "Colombo", user.Address.City)

	_, err = UpdateUser(db, "ghost", UpdateUserInput{Name: &name})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUserHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	me := r.Group("/api/users", func(c *gin.Context) { c.Set(middleware.UserIDKey, "u1") })
	me.GET("/me", GetMe(db))
	me.PUT("/me", UpdateMe(db))
	me.GET("", GetAllUsers(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"phone":"0771234567"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"phone":"0771234567"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u2"`)
}
