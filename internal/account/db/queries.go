package db

import (
	"database/sql"
	"fmt"

	"github.com/saaskit/saaskit/internal/account"
	"github.com/saaskit/saaskit/internal/db"
	"github.com/saaskit/saaskit/internal/errorz"
	"github.com/saaskit/saaskit/internal/krypto"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertUser(ef execFunc, u *account.User) error {
	var q db.Query

	q.Unsafe(`INSERT INTO users (email, name, created_at, updated_at) VALUES (`)
	q.Params(string(u.Email), u.Name, u.CreatedAt, u.UpdatedAt)
	q.Unsafe(`)`)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	u.ID = int(id)

	return nil
}

func updateUser(ef execFunc, u *account.User) error {
	var q db.Query

	q.Unsafe(`UPDATE users SET `)

	q.Unsafe(`email = `)
	q.Param(string(u.Email))

	q.Unsafe(`, name = `)
	q.Param(u.Name)

	q.Unsafe(`, created_at = `)
	q.Param(u.CreatedAt)

	q.Unsafe(`, updated_at = `)
	q.Param(u.UpdatedAt)

	q.Unsafe(` WHERE id = `)
	q.Param(u.ID)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("user not found: %w", errorz.ErrNotFound)
	}

	return nil
}

func selectUsers(qf queryFunc, f *account.UserFilter) ([]account.User, error) {
	var q db.Query

	q.Unsafe(`SELECT id, email, name, created_at, updated_at FROM users WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Emails) > 0 {
		q.Unsafe(`AND email IN (`)
		q.Params(anySlice(f.Emails)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY id ASC`)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]account.User, 0)
	for rows.Next() {
		var u account.User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func upsertCredential(ef execFunc, c *account.Credential) error {
	var q db.Query

	q.Unsafe(`INSERT INTO credentials (user_id, password_hash, created_at, updated_at) VALUES (`)
	q.Params(c.UserID, c.Hash.String(), c.CreatedAt, c.UpdatedAt)
	q.Unsafe(`) ON CONFLICT (user_id) DO UPDATE SET `)
	q.Unsafe(`password_hash = excluded.password_hash, updated_at = excluded.updated_at`)

	s, params := q.Get()

	_, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func selectCredentials(qf queryFunc, f *account.CredentialFilter) ([]account.Credential, error) {
	var q db.Query

	q.Unsafe(`SELECT user_id, password_hash, created_at, updated_at FROM credentials WHERE 1=1 `)

	if len(f.UserIDs) > 0 {
		q.Unsafe(`AND user_id IN (`)
		q.Params(anySlice(f.UserIDs)...)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY user_id ASC`)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]account.Credential, 0)
	for rows.Next() {
		var c account.Credential
		err := rows.Scan(&c.UserID, &c.Hash, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func insertToken(ef execFunc, tok *account.VerificationToken) error {
	var q db.Query

	q.Unsafe(`INSERT INTO verification_tokens (value, token_type, user_id, expires_at, consumed, created_at) VALUES (`)
	q.Params(tok.Value, tok.Type, tok.UserID, tok.ExpiresAt, tok.Consumed, tok.CreatedAt)
	q.Unsafe(`)`)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	tok.ID = int(id)

	return nil
}

func selectTokens(qf queryFunc, f *account.TokenFilter) ([]account.VerificationToken, error) {
	var q db.Query

	q.Unsafe(`SELECT id, value, token_type, user_id, expires_at, consumed, created_at FROM verification_tokens WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Values) > 0 {
		q.Unsafe(`AND value IN (`)
		q.Params(anySlice(f.Values)...)
		q.Unsafe(`) `)
	}

	if len(f.Types) > 0 {
		q.Unsafe(`AND token_type IN (`)
		q.Params(anySlice(f.Types)...)
		q.Unsafe(`) `)
	}

	if len(f.UserIDs) > 0 {
		q.Unsafe(`AND user_id IN (`)
		q.Params(anySlice(f.UserIDs)...)
		q.Unsafe(`) `)
	}

	if f.IsConsumed != nil {
		q.Unsafe(`AND consumed = `)
		q.Param(*f.IsConsumed)
		q.Unsafe(` `)
	}

	q.Unsafe(`ORDER BY id ASC`)

	s, params := q.Get()

	rows, err := qf(s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]account.VerificationToken, 0)
	for rows.Next() {
		var tok account.VerificationToken
		err := rows.Scan(&tok.ID, &tok.Value, &tok.Type, &tok.UserID, &tok.ExpiresAt, &tok.Consumed, &tok.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		out = append(out, tok)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func consumeToken(ef execFunc, value krypto.Token) (bool, error) {
	var q db.Query

	q.Unsafe(`UPDATE verification_tokens SET consumed = 1 WHERE value = `)
	q.Param(value)
	q.Unsafe(` AND consumed = 0`)

	s, params := q.Get()

	result, err := ef(s, params...)
	if err != nil {
		return false, errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errorz.MapDBErr(err)
	}

	return rows == 1, nil
}

func anySlice[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
