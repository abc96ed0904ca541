package database

import "database/sql"

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	picture TEXT NOT NULL DEFAULT '',
	followers INT NOT NULL DEFAULT 0,
	following INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	last_active TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const postsSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	likes INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const postLikesSchema = `
CREATE TABLE IF NOT EXISTS post_likes (
	id SERIAL PRIMARY KEY,
	post_id INT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (post_id, user_id)
)`

const followersSchema = `
CREATE TABLE IF NOT EXISTS followers (
	id SERIAL PRIMARY KEY,
	follower_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	following_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (follower_id, following_id)
)`

const notificationsSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	id SERIAL PRIMARY KEY,
	type TEXT NOT NULL,
	user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	sender_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	post_id INT REFERENCES posts(id) ON DELETE CASCADE,
	post_title TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	picture TEXT NOT NULL DEFAULT '',
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const messagesSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id SERIAL PRIMARY KEY,
	sender_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	receiver_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const deviceTokensSchema = `
CREATE TABLE IF NOT EXISTS device_tokens (
	id SERIAL PRIMARY KEY,
	user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, token)
)`

// EnsureSchema creates the tables this service owns if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	schemas := []string{
		usersSchema,
		postsSchema,
		postLikesSchema,
		followersSchema,
		notificationsSchema,
		messagesSchema,
		deviceTokensSchema,
	}
	for _, ddl := range schemas {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
