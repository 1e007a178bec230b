package application

import (
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// ApplicationRecord is the storage row for an application.
type ApplicationRecord struct {
	Name        string            `gorm:"primaryKey;size:255;column:name" json:"name"`
	Description *string           `gorm:"column:description" json:"description"`
	Email       *string           `gorm:"column:email;index" json:"email"`
	Accounts    *string           `gorm:"column:accounts" json:"accounts"`
	CreateTs    int64             `gorm:"not null;column:create_ts" json:"create_ts"`
	UpdateTs    int64             `gorm:"not null;column:update_ts" json:"update_ts"`
	Details     datatypes.JSONMap `gorm:"column:details" json:"details"`
}

func (ApplicationRecord) TableName() string { return "applications" }

// PermissionRecord is the storage row for a permission.
type PermissionRecord struct {
	Name                    string                      `gorm:"primaryKey;size:255;column:name" json:"name"`
	LastModified            int64                       `gorm:"not null;column:last_modified" json:"last_modified"`
	LastModifiedBy          string                      `gorm:"column:last_modified_by" json:"last_modified_by"`
	RequiredGroupMembership datatypes.JSONSlice[string] `gorm:"column:required_group_membership" json:"required_group_membership"`
}

func (PermissionRecord) TableName() string { return "permissions" }

func (a *Application) ToRecord() *ApplicationRecord {
	if a == nil {
		return nil
	}
	details := datatypes.JSONMap{}
	for k, v := range a.Details {
		details[k] = cloneValue(v)
	}
	return &ApplicationRecord{
		Name:        NormalizeName(a.Name),
		Description: clonePtr(a.Description),
		Email:       clonePtr(a.Email),
		Accounts:    clonePtr(a.Accounts),
		CreateTs:    ParseMillis(a.CreateTs),
		UpdateTs:    ParseMillis(a.UpdateTs),
		Details:     details,
	}
}

func (r *ApplicationRecord) ToApplication() *Application {
	if r == nil {
		return nil
	}
	app := &Application{
		Name:        r.Name,
		Description: clonePtr(r.Description),
		Email:       clonePtr(r.Email),
		Accounts:    clonePtr(r.Accounts),
		CreateTs:    FormatMillis(r.CreateTs),
		UpdateTs:    FormatMillis(r.UpdateTs),
		Details:     make(map[string]any, len(r.Details)),
	}
	for k, v := range r.Details {
		app.Details[k] = cloneValue(v)
	}
	return app
}

func (p *Permission) ToRecord() *PermissionRecord {
	if p == nil {
		return nil
	}
	return &PermissionRecord{
		Name:                    NormalizeName(p.Name),
		LastModified:            p.LastModified,
		LastModifiedBy:          p.LastModifiedBy,
		RequiredGroupMembership: datatypes.JSONSlice[string](p.NormalizedGroups()),
	}
}

func (r *PermissionRecord) ToPermission() *Permission {
	if r == nil {
		return nil
	}
	groups := append([]string{}, r.RequiredGroupMembership...)
	return &Permission{
		Name:                    r.Name,
		LastModified:            r.LastModified,
		LastModifiedBy:          r.LastModifiedBy,
		RequiredGroupMembership: groups,
	}
}

// ParseMillis reads a string-encoded epoch millis value; anything else is 0.
func ParseMillis(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func FormatMillis(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
