package model

import "time"

// ==================== 博客 ====================

// BlogPost 博客文章
type BlogPost struct {
	BaseModel
	Title        string     `gorm:"size:512;not null" json:"title"`
	Slug         string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Content      string     `gorm:"type:text" json:"content"`
	Excerpt      string     `gorm:"type:text" json:"excerpt"`
	Status       string     `gorm:"size:20;index" json:"status"`
	AuthorUserID int64      `gorm:"index;default:0" json:"author_user_id"`
	PublishedAt  *time.Time `json:"published_at"`
	SourceLink   string     `gorm:"size:1024" json:"source_link"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// BlogCategory 博客分类
type BlogCategory struct {
	BaseModel
	Name     string `gorm:"size:255;not null" json:"name"`
	Slug     string `gorm:"size:255;uniqueIndex" json:"slug"`
	ParentID *int64 `gorm:"index" json:"parent_id"`
}

func (BlogCategory) TableName() string { return "blog_categories" }

// BlogTag 博客标签
type BlogTag struct {
	BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
	Slug string `gorm:"size:255;uniqueIndex" json:"slug"`
}

func (BlogTag) TableName() string { return "blog_tags" }

// BlogPostCategory 文章-分类关联
type BlogPostCategory struct {
	ID         int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	PostID     int64 `gorm:"not null;uniqueIndex:uq_post_category,priority:1" json:"post_id"`
	CategoryID int64 `gorm:"not null;uniqueIndex:uq_post_category,priority:2" json:"category_id"`
}

func (BlogPostCategory) TableName() string { return "blog_post_categories" }

// BlogPostTag 文章-标签关联
type BlogPostTag struct {
	ID     int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	PostID int64 `gorm:"not null;uniqueIndex:uq_post_tag,priority:1" json:"post_id"`
	TagID  int64 `gorm:"not null;uniqueIndex:uq_post_tag,priority:2" json:"tag_id"`
}

func (BlogPostTag) TableName() string { return "blog_post_tags" }
