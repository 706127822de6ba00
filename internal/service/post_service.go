package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"starweb/internal/model"
	"starweb/internal/repository"
	"starweb/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// 文章缓存
const (
	postListCacheKeyFmt = "post:list:%s:%d:%d" // 分类:页码:每页数量
	postListCacheTTL    = 5 * time.Minute
	postViewsHashKey    = "post:views" // 浏览量增量，定时回写数据库
)

// PostService 博客文章服务
type PostService struct {
	postRepo    *repository.PostRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewPostService 创建文章服务实例
func NewPostService(postRepo *repository.PostRepository, redisClient *redis.Client, logger *logger.Logger) *PostService {
	return &PostService{
		postRepo:    postRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetPublishedPosts 获取已发布文章列表，带Redis缓存
func (s *PostService) GetPublishedPosts(ctx context.Context, category string, page, limit int) (*model.PaginatedPosts, error) {
	cacheKey := fmt.Sprintf(postListCacheKeyFmt, category, page, limit)
	if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var result model.PaginatedPosts
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	posts, err := s.postRepo.GetPublishedPosts(ctx, category, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountPublishedPosts(ctx, category)
	if err != nil {
		return nil, err
	}

	result := &model.PaginatedPosts{Total: total, Items: posts}
	if raw, err := json.Marshal(result); err == nil {
		s.redisClient.Set(ctx, cacheKey, raw, postListCacheTTL)
	}
	return result, nil
}

// GetPost 获取文章详情并累计浏览量
// 浏览量先记在Redis哈希里，由定时任务批量回写，避免每次阅读都写库
func (s *PostService) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	delta, err := s.redisClient.HIncrBy(ctx, postViewsHashKey, strconv.FormatInt(id, 10), 1).Result()
	if err != nil {
		s.logger.Warn("累计浏览量失败", "post_id", id, "error", err)
	} else {
		// 展示值合并未回写的增量
		post.Views += delta
	}
	return post, nil
}

// GetCategories 获取所有文章分类
func (s *PostService) GetCategories(ctx context.Context) ([]string, error) {
	return s.postRepo.GetCategories(ctx)
}

// GetAllPosts 获取所有文章（管理后台）
func (s *PostService) GetAllPosts(ctx context.Context, page, limit int) ([]model.Post, int64, error) {
	posts, err := s.postRepo.GetAllPosts(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CreatePost 创建文章
func (s *PostService) CreatePost(ctx context.Context, post *model.Post) error {
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	return nil
}

// UpdatePost 更新文章
func (s *PostService) UpdatePost(ctx context.Context, post *model.Post) error {
	if err := s.postRepo.UpdatePost(ctx, post); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	return nil
}

// DeletePost 删除文章
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.postRepo.DeletePost(ctx, id); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	s.redisClient.HDel(ctx, postViewsHashKey, strconv.FormatInt(id, 10))
	return nil
}

// FlushViews 将Redis里的浏览量增量回写数据库，由定时任务调用
func (s *PostService) FlushViews(ctx context.Context) error {
	counts, err := s.redisClient.HGetAll(ctx, postViewsHashKey).Result()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	for field, value := range counts {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			s.redisClient.HDel(ctx, postViewsHashKey, field)
			continue
		}
		delta, err := strconv.ParseInt(value, 10, 64)
		if err != nil || delta <= 0 {
			s.redisClient.HDel(ctx, postViewsHashKey, field)
			continue
		}
		if err := s.postRepo.AddViews(ctx, id, delta); err != nil {
			s.logger.Error("回写浏览量失败", "post_id", id, "error", err)
			continue
		}
		// 回写成功后扣减增量，期间新产生的浏览留到下一轮
		s.redisClient.HIncrBy(ctx, postViewsHashKey, field, -delta)
	}
	return nil
}

// invalidateListCache 文章变更后清理列表缓存
func (s *PostService) invalidateListCache(ctx context.Context) {
	iter := s.redisClient.Scan(ctx, 0, "post:list:*", 100).Iterator()
	for iter.Next(ctx) {
		s.redisClient.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("清理文章列表缓存失败", "error", err)
	}
}
