package models

// AdminIdentity grants the privileged capability to an identity.
type AdminIdentity struct {
	Base
	Identity  string `gorm:"uniqueIndex;not null" json:"identity"`
	GrantedBy string `gorm:"not null" json:"granted_by"`
}
