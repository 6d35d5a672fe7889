package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lrivas/postly-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserUpdate carries the fields an admin may overwrite on a user.
type UserUpdate struct {
	Name   string
	Email  string
	Role   models.Role
	Active bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(name, email, password string, role models.Role) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetActiveUserByEmail(email string) (models.User, error)
	ListUsers(offset, limit int) ([]models.User, error)
	UpdateUser(id string, upd UserUpdate) (models.User, error)
	DeactivateUser(id string) (bool, error)
	ActivateUser(id string) (bool, error)
	SearchUsers(query string, offset, limit int) (models.SearchResult[models.User], error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, name, email, password_hash, role, active, created_at, updated_at"

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// Register creates a new account with active=true. The email must be
// unused by every user, active or inactive; otherwise ErrConflict.
func (s *UserService) Register(name, email, password string, role models.Role) (models.User, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := touchTimestamps()
	user := models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, name, email, password_hash, role, active, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, string(hashedPassword), user.Role, user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials. Wrong email or password
// yields ErrUnauthorized; a matching but inactive account yields
// ErrForbidden.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrUnauthorized
	}
	if !user.Active {
		return models.User{}, fmt.Errorf("account is inactive: %w", ErrForbidden)
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single active user. Inactive users are
// invisible here; admins reach them via activate or search.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ? AND active = 1", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetActiveUserByEmail retrieves an active user by login key. Used by the
// auth middleware to resolve token claims to a live account.
func (s *UserService) GetActiveUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ? AND active = 1", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns a page of active users.
func (s *UserService) ListUsers(offset, limit int) ([]models.User, error) {
	rows, err := s.db.Query(
		"SELECT "+userColumns+" FROM users WHERE active = 1 LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser overwrites name, email, role and active on an active user.
// Returns ErrNotFound when the id does not resolve, ErrConflict when the
// new email belongs to someone else.
func (s *UserService) UpdateUser(id string, upd UserUpdate) (models.User, error) {
	if _, err := s.GetUserByID(id); err != nil {
		return models.User{}, err
	}

	var taken int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ? AND id != ?", upd.Email, id).Scan(&taken)
	if err != nil {
		return models.User{}, err
	}
	if taken > 0 {
		return models.User{}, fmt.Errorf("email %s already registered: %w", upd.Email, ErrConflict)
	}

	_, err = s.db.Exec(
		"UPDATE users SET name = ?, email = ?, role = ?, active = ?, updated_at = ? WHERE id = ?",
		upd.Name, upd.Email, upd.Role, upd.Active, touchTimestamps(), id,
	)
	if err != nil {
		return models.User{}, err
	}

	// The update may have flipped active off, so re-read without the
	// visibility filter.
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// DeactivateUser soft-removes an active user. Reports false when no
// active user has that id.
func (s *UserService) DeactivateUser(id string) (bool, error) {
	return setFlag(s.db, "users", "active", id, false)
}

// ActivateUser restores a deactivated user. The lookup is symmetric to
// DeactivateUser: only inactive users qualify.
func (s *UserService) ActivateUser(id string) (bool, error) {
	return setFlag(s.db, "users", "active", id, true)
}

// SearchUsers filters the full user set, active or not, by whitespace
// tokens ORed across name, email and role, then paginates.
func (s *UserService) SearchUsers(query string, offset, limit int) (models.SearchResult[models.User], error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users")
	if err != nil {
		return models.SearchResult[models.User]{}, err
	}
	defer rows.Close()

	tokens := tokenize(query)
	matched := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return models.SearchResult[models.User]{}, err
		}
		if !matchesAny(tokens, user.Name, user.Email, string(user.Role)) {
			continue
		}
		user.PasswordHash = ""
		matched = append(matched, user)
	}
	if err := rows.Err(); err != nil {
		return models.SearchResult[models.User]{}, err
	}

	return models.SearchResult[models.User]{
		Total:  len(matched),
		Items:  paginate(matched, offset, limit),
		Limit:  limit,
		Offset: offset,
	}, nil
}
