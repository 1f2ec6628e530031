package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/middleware"
	"github.com/boostbench/ecommerce-api/models"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type TagInput struct {
	Name string `json:"name" binding:"required"`
}

// -------- Core Logic --------

func ListCategories(db *gorm.DB) ([]models.Category, error) {
	categories := []models.Category{}
	if err := db.Order("name").Find(&categories).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch categories")
	}
	return categories, nil
}

func GetCategory(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	err := db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "category not found with id %d", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch category")
	}
	return &category, nil
}

// nameTaken reports whether another row of model already uses name.
func nameTaken(tx *gorm.DB, model interface{}, name string, exceptID uint) (bool, error) {
	var count int64
	q := tx.Model(model).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, apperr.Wrap(apperr.Internal, err, "failed to check name")
	}
	return count > 0, nil
}

func CreateCategory(db *gorm.DB, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "name is required")
	}
	category := models.Category{Name: name, Description: in.Description}
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Category{}, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "category %q already exists", name)
		}
		if err := tx.Create(&category).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to create category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(db *gorm.DB, id uint, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "name is required")
	}
	var category *models.Category
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if category, err = GetCategory(tx, id); err != nil {
			return err
		}
		taken, err := nameTaken(tx, &models.Category{}, name, id)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "category %q already exists", name)
		}
		category.Name = name
		category.Description = in.Description
		if err := tx.Save(category).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to update category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory detaches the category from its products before removing it.
func DeleteCategory(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		category, err := GetCategory(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(category).Association("Products").Clear(); err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to clear product associations")
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to delete category")
		}
		return nil
	})
}

func ListTags(db *gorm.DB) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := db.Order("name").Find(&tags).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to fetch tags")
	}
	return tags, nil
}

func CreateTag(db *gorm.DB, in TagInput) (*models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "name is required")
	}
	tag := models.Tag{Name: name}
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Tag{}, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "tag %q already exists", name)
		}
		if err := tx.Create(&tag).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to create tag")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func DeleteTag(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		err := tx.First(&tag, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "tag not found with id %d", id)
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to fetch tag")
		}
		if err := tx.Model(&tag).Association("Products").Clear(); err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to clear product associations")
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return apperr.Wrap(apperr.Internal, err, "failed to delete tag")
		}
		return nil
	})
}

// -------- Handlers --------

// GET /api/categories
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := ListCategories(db.WithContext(c.Request.Context()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /api/categories/:id
func GetCategoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		category, err := GetCategory(db.WithContext(c.Request.Context()), id)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// POST /api/categories
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in CategoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := CreateCategory(db.WithContext(c.Request.Context()), in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in CategoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := UpdateCategory(db.WithContext(c.Request.Context()), id, in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /api/categories/:id
func DeleteCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := DeleteCategory(db.WithContext(c.Request.Context()), id); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

// GET /api/tags
func GetAllTags(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := ListTags(db.WithContext(c.Request.Context()))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

// POST /api/tags
func CreateTagHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in TagInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		tag, err := CreateTag(db.WithContext(c.Request.Context()), in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, tag)
	}
}

// DELETE /api/tags/:id
func DeleteTagHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := middleware.ParamID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := DeleteTag(db.WithContext(c.Request.Context()), id); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
	}
}
