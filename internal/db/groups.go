package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func GetGroupByName(name string) (*Group, error) {
	var g Group
	err := DB.QueryRow("SELECT id, name FROM groups WHERE name = ?", name).Scan(&g.ID, &g.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query group: %w", err)
	}
	return &g, nil
}

func CreateGroup(name string) (*Group, error) {
	g := Group{ID: uuid.NewString(), Name: name}
	if _, err := DB.Exec("INSERT INTO groups (id, name) VALUES (?, ?)", g.ID, g.Name); err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return &g, nil
}

func AddGroupMember(groupID, userID, role string) error {
	_, err := DB.Exec(
		`INSERT INTO group_members (id, group_id, user_id, role)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(group_id, user_id) DO NOTHING`,
		uuid.NewString(), groupID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("insert group member: %w", err)
	}
	return nil
}

// GroupAdminEmails returns the emails of the group's admins, excluding
// the given user. Used for escalation alerts.
func GroupAdminEmails(groupID, excludeUserID string) ([]string, error) {
	rows, err := DB.Query(
		`SELECT u.email
		 FROM group_members m
		 INNER JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ? AND m.role = 'admin' AND m.user_id != ?`,
		groupID, excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("query group admins: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		if email != "" {
			emails = append(emails, email)
		}
	}
	return emails, rows.Err()
}
