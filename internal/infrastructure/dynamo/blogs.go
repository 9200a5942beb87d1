package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/qrdesk-api/internal/domain"
)

// BlogRepo stores blog posts keyed by slug.
type BlogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBlogRepo(client *dynamodb.Client, tableName string) *BlogRepo {
	return &BlogRepo{client: client, tableName: tableName}
}

// Create returns domain.ErrConflict when the slug is taken.
func (r *BlogRepo) Create(ctx context.Context, p *domain.BlogPost) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal blog post: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(slug)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("slug %q already exists: %w", p.Slug, domain.ErrConflict)
	}
	return err
}

func (r *BlogRepo) Get(ctx context.Context, slug string) (*domain.BlogPost, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("slug", slug),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("blog post not found: %w", domain.ErrNotFound)
	}
	var p domain.BlogPost
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every post, newest first.
func (r *BlogRepo) List(ctx context.Context) ([]domain.BlogPost, error) {
	posts := []domain.BlogPost{}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.BlogPost
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		posts = append(posts, batch...)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Update writes the mutable fields of p. Returns domain.ErrNotFound when
// the slug no longer exists.
func (r *BlogRepo) Update(ctx context.Context, p *domain.BlogPost) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldTitle:       p.Title,
		fieldDescription: p.Description,
		fieldContent:     p.Content,
		fieldContentHTML: p.ContentHTML,
		fieldCoverImage:  p.CoverImageURL,
		fieldUpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("slug", p.Slug),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(slug)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("blog post not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *BlogRepo) Delete(ctx context.Context, slug string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("slug", slug),
		ConditionExpression: aws.String("attribute_exists(slug)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("blog post not found: %w", domain.ErrNotFound)
	}
	return err
}
