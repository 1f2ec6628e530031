package models

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	Address   Address   `gorm:"embedded" json:"address"` // Embeds address fields directly
	Roles     []Role    `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Address model embedded in User
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// HasPermission reports whether any of the user's roles grants name.
func (u User) HasPermission(name string) bool {
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Permission{},
		&Role{},
		&User{},
		&Category{},
		&Tag{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	PermUserRead          = "USER_READ"
	PermUserCreate        = "USER_CREATE"
	PermUserUpdate        = "USER_UPDATE"
	PermRoleManage        = "ROLE_MANAGE"
	PermPermissionManage  = "PERMISSION_MANAGE"
	PermProductRead       = "PRODUCT_READ"
	PermProductCreate     = "PRODUCT_CREATE"
	PermProductUpdate     = "PRODUCT_UPDATE"
	PermProductDelete     = "PRODUCT_DELETE"
	PermCategoryRead      = "CATEGORY_READ"
	PermCategoryCreate    = "CATEGORY_CREATE"
	PermTagRead           = "TAG_READ"
	PermTagCreate         = "TAG_CREATE"
	PermCartRead          = "CART_READ"
	PermCartModify        = "CART_MODIFY"
	PermOrderCreate       = "ORDER_CREATE"
	PermOrderRead         = "ORDER_READ"
	PermOrderReadOwn      = "ORDER_READ_OWN"
	PermOrderReadAll      = "ORDER_READ_ALL"
	PermOrderStatusUpdate = "ORDER_STATUS_UPDATE"
	PermOrderPay          = "ORDER_PAY"
)
