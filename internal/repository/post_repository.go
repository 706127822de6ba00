package repository

import (
	"context"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// PostRepository 文章存储库
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository 创建文章存储库实例
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// GetPublishedPosts 获取已发布文章列表（分页）
func (r *PostRepository) GetPublishedPosts(ctx context.Context, category string, page, limit int) ([]model.PostSummary, error) {
	var posts []model.PostSummary
	offset := (page - 1) * limit

	if category != "" {
		query := `
			SELECT id, title, category, tags, views, publish_date FROM posts
			WHERE is_published = true AND category = ?
			ORDER BY publish_date DESC
			LIMIT ? OFFSET ?
		`
		err := r.db.SelectContext(ctx, &posts, query, category, limit, offset)
		return posts, err
	}

	query := `
		SELECT id, title, category, tags, views, publish_date FROM posts
		WHERE is_published = true
		ORDER BY publish_date DESC
		LIMIT ? OFFSET ?
	`
	err := r.db.SelectContext(ctx, &posts, query, limit, offset)
	return posts, err
}

// CountPublishedPosts 获取已发布文章总数
func (r *PostRepository) CountPublishedPosts(ctx context.Context, category string) (int64, error) {
	var count int64
	if category != "" {
		err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE is_published = true AND category = ?`, category)
		return count, err
	}
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE is_published = true`)
	return count, err
}

// GetPostByID 根据ID获取文章
func (r *PostRepository) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	query := `SELECT * FROM posts WHERE id = ?`
	err := r.db.GetContext(ctx, &post, query, id)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetAllPosts 获取所有文章（含未发布，管理后台用）
func (r *PostRepository) GetAllPosts(ctx context.Context, page, limit int) ([]model.Post, error) {
	var posts []model.Post
	offset := (page - 1) * limit
	query := `SELECT * FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`
	err := r.db.SelectContext(ctx, &posts, query, limit, offset)
	return posts, err
}

// CountPosts 获取文章总数
func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`)
	return count, err
}

// GetCategories 获取所有分类
func (r *PostRepository) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	query := `SELECT DISTINCT category FROM posts WHERE is_published = true AND category != '' ORDER BY category`
	err := r.db.SelectContext(ctx, &categories, query)
	return categories, err
}

// CreatePost 创建文章
func (r *PostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (title, category, tags, content, views, is_published, publish_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Category, post.Tags, post.Content,
		post.IsPublished, post.PublishDate)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

// UpdatePost 更新文章
func (r *PostRepository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = ?, category = ?, tags = ?, content = ?, is_published = ?, publish_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		post.Title, post.Category, post.Tags, post.Content,
		post.IsPublished, post.PublishDate, post.ID)
	return err
}

// DeletePost 删除文章
func (r *PostRepository) DeletePost(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// AddViews 批量累加文章浏览量（由定时任务从Redis回写）
func (r *PostRepository) AddViews(ctx context.Context, id int64, delta int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET views = views + ? WHERE id = ?`, delta, id)
	return err
}
