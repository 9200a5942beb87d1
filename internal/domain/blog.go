package domain

import "time"

type BlogPost struct {
	PostID        string    `json:"id" dynamodbav:"post_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Slug          string    `json:"slug" dynamodbav:"slug"`
	Description   string    `json:"description" dynamodbav:"description"`
	Content       string    `json:"content" dynamodbav:"content"`
	ContentHTML   string    `json:"content_html" dynamodbav:"content_html"`
	CoverImageURL *string   `json:"cover_image_url" dynamodbav:"cover_image_url"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateBlogPostRequest struct {
	Title         string  `json:"title" validate:"required"`
	Slug          string  `json:"slug" validate:"required,max=120,slug"`
	Description   string  `json:"description" validate:"required"`
	Content       string  `json:"content" validate:"required"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

type UpdateBlogPostRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1"`
	Description   *string `json:"description" validate:"omitempty,min=1"`
	Content       *string `json:"content" validate:"omitempty,min=1"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}
