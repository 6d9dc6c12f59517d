package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/velstore/velstore-api/internal/models"
)

// AdminUserRepository handles data access for dashboard users.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail returns a dashboard user by email.
func (r *AdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	const q = `
        SELECT id, email, password_hash, name, role, is_active, created_at, updated_at
        FROM admin_users
        WHERE email = $1`

	var user models.AdminUser
	if err := r.db.Get(&user, q, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetRoleByID returns the role of a dashboard user.
func (r *AdminUserRepository) GetRoleByID(id int) (string, error) {
	const q = `SELECT role FROM admin_users WHERE id = $1`

	var role string
	if err := r.db.Get(&role, q, id); err != nil {
		return "", err
	}
	return role, nil
}

// Create inserts a new dashboard user.
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	const q = `
        INSERT INTO admin_users (email, password_hash, name, role, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}
