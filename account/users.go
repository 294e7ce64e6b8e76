package account

import (
	"errors"

	"batiplan/bizerror"
	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc = CreateUser
	QueryUsersFunc = QueryUsers
	LoadPermFunc   = LoadPerm
)

func CreateUser(c *UserCreation, sec *session.Session) (*UserInfo, error) {
	if !sec.Perms.HasRole(session.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}

	role := c.Role
	if role == "" {
		role = session.RoleCommon
	}
	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Secret: HashSha256(c.Secret),
		Nickname: c.Nickname, Role: role}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	if !sec.Perms.HasRole(session.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}

	var users []User
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, UserInfo{ID: u.ID, Name: u.Name, Nickname: u.Nickname, Role: u.Role})
	}
	return &infos, nil
}

func UpdateBasicAuth(u *BasicAuthUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where(&User{ID: sec.Identity.ID}).First(&user).Error; err != nil {
			return err
		}
		if user.Secret != HashSha256(u.OriginalSecret) {
			return bizerror.ErrForbidden
		}
		return tx.Model(&User{}).Where(&User{ID: sec.Identity.ID}).
			Update("secret", HashSha256(u.NewSecret)).Error
	})
}

// LoadPerm resolves the stored role of a user into session permissions.
func LoadPerm(uid types.ID) (session.Permissions, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	if err := db.Where(&User{ID: uid}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Permissions{}, nil
		}
		return nil, err
	}
	if user.Role == "" {
		return session.Permissions{session.RoleCommon}, nil
	}
	return session.Permissions{user.Role}, nil
}
