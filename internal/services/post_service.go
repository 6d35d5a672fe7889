package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lrivas/postly-be/internal/models"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	CreatePost(title, content, userID string, tagNames []string) (models.Post, error)
	GetPostByID(id string) (models.Post, error)
	ListPosts(offset, limit int) ([]models.Post, error)
	UpdatePost(id, title, content string, tagNames []string) (models.Post, error)
	DeletePost(id string) (bool, error)
	ListTags() ([]models.Tag, error)
	SearchPosts(query string, offset, limit int) (models.SearchResult[models.Post], error)
}

// PostService provides business logic for posts and their tags.
type PostService struct {
	db *sql.DB
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db}
}

const postColumns = "id, title, content, user_id, deleted, created_at, updated_at"

func scanPost(scanner interface{ Scan(...interface{}) error }) (models.Post, error) {
	var post models.Post
	err := scanner.Scan(
		&post.ID, &post.Title, &post.Content, &post.UserID,
		&post.Deleted, &post.CreatedAt, &post.UpdatedAt,
	)
	return post, err
}

// CreatePost inserts a post and associates it with the named tags,
// creating any tag that does not exist yet. The post row, the tag rows
// and the associations commit in one transaction, then the post is
// re-fetched so the returned tag set reflects the final state.
func (s *PostService) CreatePost(title, content, userID string, tagNames []string) (models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	now := touchTimestamps()
	id := uuid.New().String()
	_, err = tx.Exec(
		"INSERT INTO posts(id, title, content, user_id, deleted, created_at, updated_at) VALUES(?, ?, ?, ?, 0, ?, ?)",
		id, title, content, userID, now, now,
	)
	if err != nil {
		return models.Post{}, err
	}

	if err := s.associateTags(tx, id, tagNames); err != nil {
		return models.Post{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}
	return s.GetPostByID(id)
}

// associateTags resolves each tag name via get-or-create and links it to
// the post. Name matching is exact and case-sensitive. The composite
// primary key on post_tags makes re-association a no-op.
func (s *PostService) associateTags(tx *sql.Tx, postID string, tagNames []string) error {
	for _, name := range tagNames {
		var tagID string
		err := tx.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&tagID)
		if err == sql.ErrNoRows {
			tagID = uuid.New().String()
			now := touchTimestamps()
			if _, err := tx.Exec(
				"INSERT INTO tags(id, name, created_at, updated_at) VALUES(?, ?, ?, ?)",
				tagID, name, now, now,
			); err != nil {
				return fmt.Errorf("failed to create tag %q: %w", name, err)
			}
		} else if err != nil {
			return err
		}

		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO post_tags(post_id, tag_id) VALUES(?, ?)",
			postID, tagID,
		); err != nil {
			return err
		}
	}
	return nil
}

// loadTags fetches the tags associated with a post, ordered by name for
// stable responses.
func (s *PostService) loadTags(postID string) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.created_at, t.updated_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetPostByID retrieves a non-deleted post with its tags. Soft-deleted
// posts are indistinguishable from absent ones: both are ErrNotFound.
func (s *PostService) GetPostByID(id string) (models.Post, error) {
	row := s.db.QueryRow("SELECT "+postColumns+" FROM posts WHERE id = ? AND deleted = 0", id)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}

	post.Tags, err = s.loadTags(post.ID)
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// ListPosts returns a page of non-deleted posts with tags loaded.
func (s *PostService) ListPosts(offset, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(
		"SELECT "+postColumns+" FROM posts WHERE deleted = 0 LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Tags, err = s.loadTags(posts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// UpdatePost overwrites title and content and appends any new tag names
// to the existing tag set. Existing associations are kept; the composite
// key prevents duplicates. Returns ErrNotFound when the id does not
// resolve to a non-deleted post.
func (s *PostService) UpdatePost(id, title, content string, tagNames []string) (models.Post, error) {
	if _, err := s.GetPostByID(id); err != nil {
		return models.Post{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ? AND deleted = 0",
		title, content, touchTimestamps(), id,
	)
	if err != nil {
		return models.Post{}, err
	}

	if err := s.associateTags(tx, id, tagNames); err != nil {
		return models.Post{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}
	return s.GetPostByID(id)
}

// DeletePost soft-deletes a post. Tags and associations stay intact.
// Reports false when the post is absent or already deleted.
func (s *PostService) DeletePost(id string) (bool, error) {
	return softDelete(s.db, "posts", id)
}

// ListTags returns every known tag. Tags are never deleted.
func (s *PostService) ListTags() ([]models.Tag, error) {
	rows, err := s.db.Query("SELECT id, name, created_at, updated_at FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// SearchPosts filters all non-deleted posts by whitespace tokens ORed
// across title, content and the post's tag names, then paginates.
func (s *PostService) SearchPosts(query string, offset, limit int) (models.SearchResult[models.Post], error) {
	posts, err := s.allPostsWithTags()
	if err != nil {
		return models.SearchResult[models.Post]{}, err
	}

	tokens := tokenize(query)
	matched := []models.Post{}
	for _, post := range posts {
		names := make([]string, len(post.Tags))
		for i, tag := range post.Tags {
			names[i] = tag.Name
		}
		if matchesAny(tokens, post.Title, post.Content, strings.Join(names, " ")) {
			matched = append(matched, post)
		}
	}

	return models.SearchResult[models.Post]{
		Total:  len(matched),
		Items:  paginate(matched, offset, limit),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *PostService) allPostsWithTags() ([]models.Post, error) {
	rows, err := s.db.Query("SELECT " + postColumns + " FROM posts WHERE deleted = 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Tags, err = s.loadTags(posts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}
