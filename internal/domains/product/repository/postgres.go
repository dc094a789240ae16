package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const productColumns = `
	id, name, slug, description, image, brand, category,
	price, stock, created_at, updated_at
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, filter model.Filter) ([]model.Product, int, error) {
	var (
		clauses []string
		args    []interface{}
	)

	// Case-insensitive substring match on name
	if filter.Keyword != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Keyword)+"%")
		clauses = append(clauses, "name ILIKE "+utils.Placeholder(len(args)))
	}
	where := utils.WhereClause(clauses)

	// Step 1: Count
	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 {
		return []model.Product{}, 0, nil
	}

	// Step 2: Page
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC, id
		LIMIT %s OFFSET %s
	`, productColumns, where, utils.Placeholder(len(args)-1), utils.Placeholder(len(args)))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - return nil, not error
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetByIDs implements RepositoryInterface.GetByIDs
func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := "SELECT " + productColumns + " FROM products WHERE id = ANY($1)"
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Image, p.Brand, p.Category,
		p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// CreateBatch implements RepositoryInterface.CreateBatch
func (r *postgresRepository) CreateBatch(ctx context.Context, products []*model.Product) (int, error) {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO NOTHING
	`

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int, error) {
		inserted := 0
		now := time.Now()
		for _, p := range products {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			p.CreatedAt, p.UpdatedAt = now, now

			tag, err := tx.Exec(ctx, query,
				p.ID, p.Name, p.Slug, p.Description, p.Image, p.Brand, p.Category,
				p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert product %q: %w", p.Slug, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return inserted, nil
	})
}

// Update implements RepositoryInterface.Update
func (r *postgresRepository) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, image = $5,
		    brand = $6, category = $7, price = $8, stock = $9,
		    updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Image,
		p.Brand, p.Category, p.Price, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// Delete implements RepositoryInterface.Delete
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Image, &p.Brand, &p.Category,
		&p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
