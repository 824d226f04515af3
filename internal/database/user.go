package database

import (
	"database/sql"
	"fmt"

	"github.com/furclan/eventbot/internal/domain/contract"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type userRepo struct {
	db dbConn
}

func newUserRepo(db dbConn) contract.UserRepo {
	return &userRepo{db: db}
}

// Upsert refreshes a user row keyed by chat id. Called by the login flow;
// the schedulers only read.
func (r *userRepo) Upsert(user *entity.User) error {
	query := `
		INSERT INTO users (chat_user_id, user_name, language, timezone, is_bot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_user_id) DO UPDATE SET
			user_name = excluded.user_name,
			language = excluded.language,
			timezone = excluded.timezone,
			is_bot = excluded.is_bot
	`

	_, err := r.db.Exec(query,
		user.ChatUserID,
		user.UserName,
		user.Language,
		user.Timezone,
		user.IsBot,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	stored, err := r.GetByChatID(user.ChatUserID)
	if err != nil {
		return err
	}
	if stored != nil {
		user.ID = stored.ID
	}
	return nil
}

func (r *userRepo) GetByChatID(chatUserID string) (*entity.User, error) {
	user := &entity.User{}
	query := `
		SELECT id, chat_user_id, user_name, language, timezone, is_bot, created_at
		FROM users
		WHERE chat_user_id = ?
	`

	err := r.db.QueryRow(query, chatUserID).Scan(
		&user.ID,
		&user.ChatUserID,
		&user.UserName,
		&user.Language,
		&user.Timezone,
		&user.IsBot,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepo) ListMembers() ([]*entity.User, error) {
	query := `
		SELECT id, chat_user_id, user_name, language, timezone, is_bot, created_at
		FROM users
		WHERE is_bot = 0
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user := &entity.User{}
		err := rows.Scan(
			&user.ID,
			&user.ChatUserID,
			&user.UserName,
			&user.Language,
			&user.Timezone,
			&user.IsBot,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}
