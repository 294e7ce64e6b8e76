package session

import (
	"context"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCommon  = "common"
)

type Permissions []string

func (p Permissions) HasRole(role string) bool {
	for _, v := range p {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (p Permissions) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

type Session struct {
	Token    string      `json:"token"`
	Identity Identity    `json:"identity"`
	Perms    Permissions `json:"perms"`

	SigningTime time.Time       `json:"-"`
	Context     context.Context `json:"-"`
}

func (s *Session) Clone() Session {
	perms := make(Permissions, len(s.Perms))
	copy(perms, s.Perms)
	return Session{Token: s.Token, Identity: s.Identity, Perms: perms, SigningTime: s.SigningTime}
}

// CanManagePlanning guards board mutations and CRUD writes.
func (s *Session) CanManagePlanning() bool {
	return s.Perms.HasAnyRole(RoleAdmin, RoleManager)
}
