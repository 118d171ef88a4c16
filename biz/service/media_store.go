package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/pkg/validator"
	"gorm.io/gorm"
)

// ErrCreationFailed means an inserted row could not be read back.
var ErrCreationFailed = errors.New("created record could not be read back")

// TxFunc runs extra statements inside a media mutation's transaction.
type TxFunc func(tx *gorm.DB, id uint) error

// ListResult is one page of records plus the effective options.
type ListResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
	Sort  string
	Order string
}

// Outcome is the result of an update or delete. Current is nil after a
// delete. The caller removes ObsoleteFiles once the transaction committed.
type Outcome[PT any] struct {
	Previous PT
	Current  PT
}

// MediaStore runs the transactional record operations of one media kind.
type MediaStore[T any, PT db.MediaRecord[T]] struct {
	db  *gorm.DB
	dao *db.MediaDAO[T, PT]
	now func() time.Time
}

func NewMediaStore[T any, PT db.MediaRecord[T]](conn *gorm.DB) *MediaStore[T, PT] {
	return &MediaStore[T, PT]{
		db:  conn,
		dao: db.NewMediaDAO[T, PT](),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MediaStore[T, PT]) List(ctx context.Context, opts validator.ListOptions) (*ListResult[T], error) {
	items, total, err := s.dao.List(ctx, s.db, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult[T]{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
		Sort:  opts.Sort,
		Order: opts.Order,
	}, nil
}

// FindByID returns nil without error when the record does not exist.
func (s *MediaStore[T, PT]) FindByID(ctx context.Context, id uint) (PT, error) {
	return s.find(ctx, s.db, id)
}

func (s *MediaStore[T, PT]) find(ctx context.Context, conn *gorm.DB, id uint) (PT, error) {
	record, err := s.dao.GetByID(ctx, conn, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return record, err
}

// Create inserts record with a server timestamp, runs within in the same
// transaction and returns the row as stored.
func (s *MediaStore[T, PT]) Create(ctx context.Context, record PT, within TxFunc) (PT, error) {
	var created PT
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record.Base().ID = 0
		record.Base().CreatedAt = s.now()
		if err := s.dao.Create(ctx, tx, record); err != nil {
			return err
		}
		if within != nil {
			if err := within(tx, record.Base().ID); err != nil {
				return err
			}
		}
		var err error
		if created, err = s.find(ctx, tx, record.Base().ID); err != nil {
			return err
		}
		if created == nil {
			return ErrCreationFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update writes columns and runs within in one transaction. It returns a nil
// outcome when id is unknown.
func (s *MediaStore[T, PT]) Update(ctx context.Context, id uint, columns map[string]any, within TxFunc) (*Outcome[PT], error) {
	var outcome *Outcome[PT]
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := s.find(ctx, tx, id)
		if err != nil || previous == nil {
			return err
		}
		if err := s.dao.Updates(ctx, tx, id, columns); err != nil {
			return err
		}
		if within != nil {
			if err := within(tx, id); err != nil {
				return err
			}
		}
		current, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		outcome = &Outcome[PT]{Previous: previous, Current: current}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Delete runs within and removes the row in one transaction. It returns a
// nil outcome when id is unknown.
func (s *MediaStore[T, PT]) Delete(ctx context.Context, id uint, within TxFunc) (*Outcome[PT], error) {
	var outcome *Outcome[PT]
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := s.find(ctx, tx, id)
		if err != nil || previous == nil {
			return err
		}
		if within != nil {
			if err := within(tx, id); err != nil {
				return err
			}
		}
		if err := s.dao.Delete(ctx, tx, id); err != nil {
			return err
		}
		outcome = &Outcome[PT]{Previous: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ObsoleteFiles lists stored names referenced by Previous but not by Current.
func ObsoleteFiles[T any, PT db.MediaRecord[T]](o *Outcome[PT]) []string {
	if o == nil || o.Previous == nil {
		return nil
	}
	var keep []string
	if o.Current != nil {
		keep = o.Current.StoredFiles()
	}
	var obsolete []string
	for _, name := range o.Previous.StoredFiles() {
		if !slices.Contains(keep, name) {
			obsolete = append(obsolete, name)
		}
	}
	return obsolete
}
