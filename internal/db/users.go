package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Users

func GetOrCreateUser(email, name string) (*User, error) {
	var u User
	err := DB.QueryRow("SELECT id, email, name, created_at FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		u = User{ID: uuid.NewString(), Email: email, Name: name, CreatedAt: time.Now().UTC()}
		if _, err := DB.Exec(
			"INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)",
			u.ID, u.Email, u.Name, u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return &u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func GetUserByID(id string) (*User, error) {
	var u User
	err := DB.QueryRow("SELECT id, email, name, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Magic tokens

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func CreateMagicToken(email string) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(15 * time.Minute)

	_, err = DB.Exec(
		"INSERT INTO magic_tokens (email, token, expires_at, status) VALUES (?, ?, ?, 'pending')",
		email, token, expires,
	)
	if err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}

func ValidateMagicToken(token string) (string, error) {
	var email string
	var used int
	var expiresAt time.Time
	err := DB.QueryRow(
		"SELECT email, used, expires_at FROM magic_tokens WHERE token = ?", token,
	).Scan(&email, &used, &expiresAt)
	if err != nil {
		return "", fmt.Errorf("token not found")
	}
	if used != 0 {
		return "", fmt.Errorf("token already used")
	}
	if time.Now().After(expiresAt) {
		return "", fmt.Errorf("token expired")
	}
	return email, nil
}

func ApproveMagicToken(token string) (string, error) {
	email, err := ValidateMagicToken(token)
	if err != nil {
		return "", err
	}
	if _, err := DB.Exec("UPDATE magic_tokens SET status = 'approved' WHERE token = ?", token); err != nil {
		return "", fmt.Errorf("approve token: %w", err)
	}
	return email, nil
}

func CheckMagicTokenStatus(token string) (status string, email string, err error) {
	var used int
	var expiresAt time.Time
	err = DB.QueryRow(
		"SELECT email, used, status, expires_at FROM magic_tokens WHERE token = ?", token,
	).Scan(&email, &used, &status, &expiresAt)
	if err != nil {
		return "", "", fmt.Errorf("token not found")
	}
	if used != 0 {
		return "used", email, nil
	}
	if time.Now().After(expiresAt) {
		return "expired", email, nil
	}
	return status, email, nil
}

func MarkMagicTokenUsed(token string) error {
	_, err := DB.Exec("UPDATE magic_tokens SET used = 1 WHERE token = ?", token)
	return err
}

// Auth sessions

func CreateAuthSession(userID string) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(30 * 24 * time.Hour)

	_, err = DB.Exec(
		"INSERT INTO auth_sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, token, expires,
	)
	if err != nil {
		return "", fmt.Errorf("insert auth session: %w", err)
	}
	return token, nil
}

func GetUserByAuthSession(token string) (*User, error) {
	var userID string
	var expiresAt time.Time
	err := DB.QueryRow(
		"SELECT user_id, expires_at FROM auth_sessions WHERE token = ?", token,
	).Scan(&userID, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("auth session not found")
	}
	if time.Now().After(expiresAt) {
		DB.Exec("DELETE FROM auth_sessions WHERE token = ?", token)
		return nil, fmt.Errorf("auth session expired")
	}
	return GetUserByID(userID)
}

func DeleteAuthSession(token string) {
	DB.Exec("DELETE FROM auth_sessions WHERE token = ?", token)
}
