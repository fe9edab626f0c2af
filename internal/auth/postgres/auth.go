package postgres

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	refreshtokenDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/refreshtoken"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

// Repository backs both the user-lookup and refresh-token sides of the auth
// service with one gorm handle.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(id uuid.UUID) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UpdateRole(id uuid.UUID, role string) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *Repository) Create(rec *refreshtokenDatamodel.RefreshToken) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByToken(token string) (*refreshtokenDatamodel.RefreshToken, error) {
	var rec refreshtokenDatamodel.RefreshToken
	err := r.db.Where("token = ?", token).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Rotate consumes the old row and inserts the replacement atomically so a
// crash mid-rotation cannot leave both tokens valid.
func (r *Repository) Rotate(oldToken string, next *refreshtokenDatamodel.RefreshToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("token = ?", oldToken).Delete(&refreshtokenDatamodel.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(next).Error
	})
}

func (r *Repository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&refreshtokenDatamodel.RefreshToken{}).Error
}
