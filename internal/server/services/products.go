package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/server/auth"
	sc "github.com/mkravec/rastlinka/internal/server/config"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/repositories/repomanager"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Hooks for the AWS SDK so tests can run without an S3 backend.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ProductInput is the caller-supplied part of a product; the seller is
// always taken from the authenticated identity.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	ImageKey    string
}

// ProductService manages the catalog. Edits and deletes are owner-only;
// the existence check always runs before the ownership check.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ProductService {
	return &ProductService{db: db, repomanager: m, config: cfg}
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int64, error) {
	return s.repomanager.Products(s.db).List(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repomanager.Products(s.db).GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, sellerID string, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	return s.repomanager.Products(s.db).Create(ctx, &models.Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		PriceCents:  input.PriceCents,
		Currency:    "EUR",
		ImageKey:    input.ImageKey,
	})
}

// Update modifies a listing. Missing product → ErrorNotFound; a caller who
// is not the seller → ErrForbidden.
func (s *ProductService) Update(ctx context.Context, userID, productID string, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	repo := s.repomanager.Products(s.db)

	existing, err := repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !auth.IsOwner(existing.SellerID, userID) {
		return nil, common.ErrForbidden
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Category = input.Category
	existing.PriceCents = input.PriceCents
	existing.ImageKey = input.ImageKey

	return repo.Update(ctx, existing)
}

func (s *ProductService) Delete(ctx context.Context, userID, productID string) error {
	repo := s.repomanager.Products(s.db)

	existing, err := repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !auth.IsOwner(existing.SellerID, userID) {
		return common.ErrForbidden
	}

	return repo.Delete(ctx, productID)
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if input.PriceCents <= 0 {
		return fmt.Errorf("%w: price_cents must be positive", common.ErrValidation)
	}
	return nil
}

// --- product image uploads ---

func newImageStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("products/%d/%02d/%v", d.Year(), d.Month(), uuid.New())
}

func (s *ProductService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// NewImageUpload returns a storage key and a presigned PUT URL the client
// uploads the image to directly; the key is then saved on the product.
func (s *ProductService) NewImageUpload(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := newImageStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// ImageDownloadURL returns a presigned GET URL for a stored product image.
func (s *ProductService) ImageDownloadURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
