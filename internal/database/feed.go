package database

import (
	"context"
	"fmt"

	"campushub/internal/models"
)

func (db *PostgresDB) CreatePost(ctx context.Context, authorID int, content, imageURL string) (*models.Post, error) {
	post := &models.Post{AuthorID: authorID, Content: content, ImageURL: imageURL}
	err := db.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, image_url, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		authorID, content, imageURL).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (db *PostgresDB) ListPosts(ctx context.Context, viewerID, limit int) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.author_id, u.display_name, u.avatar_url, p.content, p.image_url,
		       COUNT(l.user_id) AS like_count,
		       BOOL_OR(l.user_id = $1) IS TRUE AS liked,
		       p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN post_likes l ON l.post_id = p.id
		GROUP BY p.id, u.display_name, u.avatar_url
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, viewerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.AuthorAvatar,
			&post.Content, &post.ImageURL, &post.LikeCount, &post.Liked, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (db *PostgresDB) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post := &models.Post{}
	err := db.pool.QueryRow(ctx, `
		SELECT p.id, p.author_id, u.display_name, u.avatar_url, p.content, p.image_url, p.created_at
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`, id).Scan(&post.ID, &post.AuthorID, &post.AuthorName,
		&post.AuthorAvatar, &post.Content, &post.ImageURL, &post.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return post, nil
}

func (db *PostgresDB) DeletePost(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike flips the like marker and returns the new state with the fresh
// count, all inside one transaction.
func (db *PostgresDB) ToggleLike(ctx context.Context, postID int64, userID int) (*models.LikeResult, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res := &models.LikeResult{PostID: postID}

	tag, err := tx.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, NOW())`,
			postID, userID); err != nil {
			return nil, fmt.Errorf("failed to like post: %w", err)
		}
		res.Liked = true
	}

	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&res.LikeCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}
