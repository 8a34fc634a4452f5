package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/logger"
	"ustbills/internal/models"
)

// adminService is the privileged-caller policy: a configured identity set
// plus identities granted at runtime.
type adminService struct {
	store  *database.Store
	static map[string]struct{}
}

// NewAdminService creates a new AdminServicer seeded with identities.
func NewAdminService(store *database.Store, identities []string) AdminServicer {
	static := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		if id = strings.TrimSpace(id); !IsAnonymous(id) {
			static[id] = struct{}{}
		}
	}
	return &adminService{store: store, static: static}
}

// IsAdmin reports whether identity holds the privileged capability.
func (s *adminService) IsAdmin(identity string) (bool, error) {
	if IsAnonymous(identity) {
		return false, nil
	}
	if _, ok := s.static[identity]; ok {
		return true, nil
	}
	var count int64
	if err := s.store.DB().Model(&models.AdminIdentity{}).Where("identity = ?", identity).Count(&count).Error; err != nil {
		return false, dbError(err)
	}
	return count > 0, nil
}

// GrantAdmin gives identity the privileged capability. Granting an existing
// admin is a no-op.
func (s *adminService) GrantAdmin(actor, identity string) (*models.AdminIdentity, error) {
	identity = strings.TrimSpace(identity)
	if IsAnonymous(identity) {
		return nil, apperrors.WithDetail(apperrors.ErrValidation, "the anonymous identity cannot be an admin")
	}

	grant := &models.AdminIdentity{Identity: identity, GrantedBy: actor}
	err := s.store.Atomic(func(tx *gorm.DB) error {
		return tx.Where(models.AdminIdentity{Identity: identity}).
			Attrs(models.AdminIdentity{GrantedBy: actor}).
			FirstOrCreate(grant).Error
	})
	if err != nil {
		return nil, dbError(err)
	}

	logger.Get().Infow("admin granted", "identity", identity, "granted_by", grant.GrantedBy)
	return grant, nil
}

// ListAdmins returns every admin identity, sorted.
func (s *adminService) ListAdmins() ([]string, error) {
	var granted []string
	if err := s.store.DB().Model(&models.AdminIdentity{}).Pluck("identity", &granted).Error; err != nil {
		return nil, dbError(err)
	}

	seen := make(map[string]struct{}, len(s.static)+len(granted))
	admins := make([]string, 0, len(s.static)+len(granted))
	for id := range s.static {
		seen[id] = struct{}{}
		admins = append(admins, id)
	}
	for _, id := range granted {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			admins = append(admins, id)
		}
	}
	sort.Strings(admins)
	return admins, nil
}
