// Package repositories is the persistence gateway: typed gorm access per
// entity with upsert, paging and delete.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("record not found")

// Repository provides storage for one entity type.
type Repository[T any] struct {
	db       *gorm.DB
	preloads []string
}

// New returns a Repository for T. preloads name the references loaded with
// every read ("ProductCategory", "Product.ProductCategory").
func New[T any](db *gorm.DB, preloads ...string) *Repository[T] {
	return &Repository[T]{db: db, preloads: preloads}
}

// WithTx returns a copy bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, preloads: r.preloads}
}

func (r *Repository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

// Save inserts entity when its id is nil and otherwise replaces the row with
// that id, inserting it when absent. References are written through their
// foreign-key columns only.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return fmt.Errorf("failed to save %T: %w", entity, err)
	}
	return nil
}

// FindByID loads one row with its preloads.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.query(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %T %d: %w", entity, id, err)
	}
	return &entity, nil
}

// ExistsByID reports whether a row with id exists.
func (r *Repository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %T %d: %w", new(T), id, err)
	}
	return count > 0, nil
}

// FindAll returns one page ordered by the requested sort keys, then by id.
func (r *Repository[T]) FindAll(ctx context.Context, p Pageable) (Page[*T], error) {
	orders, err := r.orderBy(p.Sort)
	if err != nil {
		return Page[*T]{}, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return Page[*T]{}, fmt.Errorf("failed to count %T: %w", new(T), err)
	}

	items := make([]*T, 0, p.Size)
	if offset, ok := p.Offset(); ok && total > int64(offset) {
		q := r.query(ctx).Clauses(clause.OrderBy{Columns: orders}).Offset(offset).Limit(p.Size)
		if err := q.Find(&items).Error; err != nil {
			return Page[*T]{}, fmt.Errorf("failed to list %T: %w", new(T), err)
		}
	}

	return Page[*T]{Content: items, Number: p.Page, Size: p.Size, TotalElements: total}, nil
}

// FindAllUnpaged returns every row ordered by id.
func (r *Repository[T]) FindAllUnpaged(ctx context.Context) ([]*T, error) {
	items := []*T{}
	if err := r.query(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", new(T), err)
	}
	return items, nil
}

// DeleteByID removes the row with id. It reports how many rows went; zero
// is not an error.
func (r *Repository[T]) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete %T %d: %w", new(T), id, result.Error)
	}
	return result.RowsAffected, nil
}

// Count returns the number of rows matching where.
func (r *Repository[T]) Count(ctx context.Context, where string, args ...any) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(new(T))
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", new(T), err)
	}
	return count, nil
}

// orderBy maps sort properties (JSON names such as "imageContentType") to
// columns, rejecting anything that is not a column of T. The primary key is
// always the final tie-breaker.
func (r *Repository[T]) orderBy(sort []Order) ([]clause.OrderByColumn, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("failed to parse %T: %w", new(T), err)
	}
	sch := stmt.Schema

	cols := make([]clause.OrderByColumn, 0, len(sort)+1)
	seenID := false
	for _, o := range sort {
		name := r.db.NamingStrategy.ColumnName("", o.Property)
		field := sch.LookUpField(name)
		if field == nil {
			field = sch.LookUpField(o.Property)
		}
		if field == nil || field.DBName == "" {
			return nil, &SortError{Property: o.Property}
		}
		if field.PrimaryKey {
			seenID = true
		}
		cols = append(cols, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName},
			Desc:   o.Desc,
		})
	}

	if !seenID && sch.PrioritizedPrimaryField != nil {
		cols = append(cols, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: sch.PrioritizedPrimaryField.DBName},
		})
	}
	return cols, nil
}
