package db

import (
	"context"
	"errors"
	"strings"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/pkg/validator"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MediaRecord constrains PT to a pointer to a media struct.
type MediaRecord[T any] interface {
	*T
	model.Media
}

var sortColumns = map[string]string{
	validator.SortID:        "id",
	validator.SortCreatedAt: "created_at",
	validator.SortTitle:     "title",
}

// MediaDAO wraps CRUD operations shared by every media table.
type MediaDAO[T any, PT MediaRecord[T]] struct{}

func NewMediaDAO[T any, PT MediaRecord[T]]() *MediaDAO[T, PT] { return &MediaDAO[T, PT]{} }

// List applies filters, sorting and pagination. total counts the filtered
// rows before pagination.
func (dao *MediaDAO[T, PT]) List(ctx context.Context, db *gorm.DB, opts validator.ListOptions) ([]T, int64, error) {
	filtered := func() *gorm.DB {
		tx := db.WithContext(ctx).Model(new(T))
		if opts.Q != "" {
			like := "%" + escapeLike(strings.ToLower(opts.Q)) + "%"
			tx = tx.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!')", like, like)
		}
		if opts.Author != "" {
			tx = tx.Where("LOWER(author) = ?", strings.ToLower(opts.Author))
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := filtered()
	column, ok := sortColumns[opts.Sort]
	if !ok {
		column = "id"
	}
	desc := opts.Order != validator.OrderAsc
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	if column != "id" {
		// stable order between equal titles or timestamps
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	if opts.Limit > 0 {
		page := opts.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(opts.Limit).Offset((page - 1) * opts.Limit)
	}

	items := make([]T, 0)
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID fetches a single record. Returns gorm.ErrRecordNotFound when absent.
func (dao *MediaDAO[T, PT]) GetByID(ctx context.Context, db *gorm.DB, id uint) (PT, error) {
	record := PT(new(T))
	if err := db.WithContext(ctx).Where("id = ?", id).First(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Create persists a new record and fills its ID.
func (dao *MediaDAO[T, PT]) Create(ctx context.Context, db *gorm.DB, record PT) error {
	if record == nil {
		return errors.New("media record must not be nil")
	}
	return db.WithContext(ctx).Create(record).Error
}

// Updates writes the given columns. Callers check existence first: some
// drivers report zero affected rows when the values did not change.
func (dao *MediaDAO[T, PT]) Updates(ctx context.Context, db *gorm.DB, id uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(columns).Error
}

// Delete removes a record. Returns gorm.ErrRecordNotFound when no row matched.
func (dao *MediaDAO[T, PT]) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
