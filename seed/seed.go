// Package seed bootstraps the roles and permissions the route guards check.
// Run is idempotent and safe to call on every start.
package seed

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boostbench/ecommerce-api/models"
)

var userPermissions = []string{
	models.PermProductRead,
	models.PermCategoryRead,
	models.PermTagRead,
	models.PermCartRead,
	models.PermCartModify,
	models.PermOrderCreate,
	models.PermOrderRead,
	models.PermOrderReadOwn,
	models.PermOrderPay,
}

var adminPermissions = []string{
	models.PermUserRead,
	models.PermUserCreate,
	models.PermUserUpdate,
	models.PermRoleManage,
	models.PermPermissionManage,
	models.PermProductRead,
	models.PermProductCreate,
	models.PermProductUpdate,
	models.PermProductDelete,
	models.PermCategoryRead,
	models.PermCategoryCreate,
	models.PermTagRead,
	models.PermTagCreate,
	models.PermCartRead,
	models.PermCartModify,
	models.PermOrderCreate,
	models.PermOrderRead,
	models.PermOrderReadOwn,
	models.PermOrderReadAll,
	models.PermOrderStatusUpdate,
	models.PermOrderPay,
}

// Admin identifies the bootstrap administrator. An empty ID skips it.
type Admin struct {
	ID    string
	Email string
}

// Run creates missing permissions and the USER and ADMIN roles, resets each
// role's grants to the catalogue above and attaches the ADMIN role to admin.
func Run(db *gorm.DB, admin Admin) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureRole(tx, models.RoleUser, userPermissions); err != nil {
			return err
		}
		adminRole, err := ensureRole(tx, models.RoleAdmin, adminPermissions)
		if err != nil {
			return err
		}

		if admin.ID == "" {
			return nil
		}
		user := models.User{ID: admin.ID}
		if err := tx.Where(models.User{ID: admin.ID}).
			Attrs(models.User{Email: admin.Email, Name: "Administrator", Provider: "bootstrap"}).
			FirstOrCreate(&user).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Roles").Append(adminRole); err != nil {
			return err
		}
		zap.L().Info("bootstrap admin ready", zap.String("user_id", user.ID))
		return nil
	})
}

func ensureRole(tx *gorm.DB, name string, permNames []string) (*models.Role, error) {
	perms := make([]models.Permission, 0, len(permNames))
	for _, n := range permNames {
		var p models.Permission
		if err := tx.Where(models.Permission{Name: n}).FirstOrCreate(&p).Error; err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	var role models.Role
	if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
		return nil, err
	}
	return &role, nil
}

// UserRole returns the USER role, for sign-up paths.
func UserRole(db *gorm.DB) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
