package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

type UpdateUserInput struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

// -------- Core Logic --------

func GetUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.Preload("Roles").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found: %s", userID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch user")
	}
	return &user, nil
}

// UpdateUser applies only the fields present in input.
func UpdateUser(db *gorm.DB, userID string, input UpdateUserInput) (*models.User, error) {
	user, err := GetUser(db, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["street"] = input.Address.Street
		updates["city"] = input.Address.City
		updates["state"] = input.Address.State
		updates["postal_code"] = input.Address.PostalCode
		updates["country"] = input.Address.Country
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := db.Model(user).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to update user")
	}
	return GetUser(db, userID)
}

func ListUsers(db *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	if err := db.
		Select("id", "email", "name", "phone", "provider", "created_at").
		Order("created_at desc").
		Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch users")
	}
	return users, nil
}

// -------- Handlers --------

// GET /api/users/me
func GetMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		user, err := GetUser(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /api/users/me
func UpdateMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.RequireUserID(c)
		if !ok {
			return
		}
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := UpdateUser(db.WithContext(c.Request.Context()), userID, input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /api/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := ListUsers(db.WithContext(c.Request.Context()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
