package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/models"
)

// ListFilter drives the storefront product listing.
type ListFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Order    string
	Limit    int
	Offset   int
}

var sortableColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
	"stock":      "stock",
}

// Repository is the Postgres-backed catalog.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindCandidates runs the recall query server-side: one OR-combined ILIKE
// predicate per term over name, description, category, tags and colors.
func (r *Repository) FindCandidates(ctx context.Context, q Query) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})

	if category := strings.TrimSpace(q.Category); category != "" {
		tx = tx.Where("LOWER(category) = LOWER(?)", category)
	}

	clauses := make([]string, 0, len(q.Terms))
	args := make([]interface{}, 0, len(q.Terms)*5)
	for _, term := range q.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		like := "%" + escapeLike(term) + "%"
		clauses = append(clauses, `(name ILIKE ? OR description ILIKE ? OR category ILIKE ?`+
			` OR EXISTS (SELECT 1 FROM unnest(tags) AS t(v) WHERE t.v ILIKE ?)`+
			` OR EXISTS (SELECT 1 FROM unnest(colors) AS c(v) WHERE c.v ILIKE ?))`)
		args = append(args, like, like, like, like, like)
	}
	if len(clauses) == 0 {
		return []models.Product{}, nil
	}
	tx = tx.Where(strings.Join(clauses, " OR "), args...)

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var products []models.Product
	if err := tx.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "find candidate products")
	}
	return products, nil
}

func (r *Repository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load product %s", id)
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})

	if filter.Search != "" {
		likePattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", likePattern, likePattern)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToLower(filter.Order)
	if order != "asc" {
		order = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.CategorySummary, error) {
	var categories []models.CategorySummary
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category AS name, COUNT(*) AS product_count").
		Where("category <> ''").
		Group("category").
		Order("category ASC").
		Scan(&categories).Error
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

// SaveProduct updates a product's columns and replaces its image list.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(product).Error; err != nil {
			return errors.Wrapf(err, "save product %s", product.ID)
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return errors.Wrapf(err, "clear images of %s", product.ID)
		}
		for i := range product.Images {
			product.Images[i].ID = 0
			product.Images[i].ProductID = product.ID
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return errors.Wrapf(err, "store images of %s", product.ID)
			}
		}
		return nil
	})
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete product %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
