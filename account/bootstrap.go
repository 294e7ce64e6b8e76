package account

import (
	"os"

	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const DefaultAdminName = "admin"

// EnsureDefaultAdmin creates the bootstrap admin account when the user
// table is empty. The initial secret comes from ADMIN_SECRET.
func EnsureDefaultAdmin() error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	user := User{}
	err := db.Where(&User{Name: DefaultAdminName}).First(&user).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	secret := os.Getenv("ADMIN_SECRET")
	if secret == "" {
		secret = "admin123"
		logrus.Warn("ADMIN_SECRET is not set, default admin created with a well known secret")
	}

	user = User{
		ID:     idgen.NextID(userIdWorker),
		Name:   DefaultAdminName,
		Secret: HashSha256(secret),
		Role:   session.RoleAdmin,
	}
	return db.Create(&user).Error
}
