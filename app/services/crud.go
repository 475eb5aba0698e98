package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shashiranjanraj/kproduct/app/repositories"
	"github.com/shashiranjanraj/kproduct/pkg/cache"
	"github.com/shashiranjanraj/kproduct/pkg/event"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/metrics"
	"github.com/shashiranjanraj/kproduct/pkg/validate"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type identified[T any] interface {
	*T
	GetID() *int64
}

// crud is the service contract shared by every entity: transactional
// upsert, paged listing, read-through lookup and idempotent delete.
type crud[T any, PT identified[T]] struct {
	// name keys the cache and metrics ("product-category"); entityName is
	// the alert/event name ("kproductProductCategory"); label goes in logs.
	name       string
	entityName string
	label      string

	db     *gorm.DB
	repo   *repositories.Repository[T]
	cache  *cache.Store
	events *event.Dispatcher
	group  singleflight.Group

	// dependents are the cache names of entities that embed this one.
	dependents []string
	// references reports missing referenced rows, checked inside the write
	// transaction.
	references func(ctx context.Context, tx *gorm.DB, entity PT) (map[string]string, error)
	// beforeDelete applies the delete lifecycle inside the transaction.
	beforeDelete func(ctx context.Context, tx *gorm.DB, id int64) error
}

// Save validates entity and upserts it in one transaction. The returned
// entity is re-read with its references.
func (c *crud[T, PT]) Save(ctx context.Context, entity PT) (saved PT, err error) {
	logger.WithCtx(ctx).Debug("Request to save "+c.label, c.name, entity)
	defer func() { metrics.RecordEntityOp(c.name, "save", outcome(err)) }()

	if errs := validate.Struct(entity); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	action := event.Updated
	if entity.GetID() == nil {
		action = event.Created
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.references != nil {
			missing, err := c.references(ctx, tx, entity)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return &ValidationError{Fields: missing}
			}
		}

		repo := c.repo.WithTx(tx)
		if err := repo.Save(ctx, (*T)(entity)); err != nil {
			return err
		}
		found, err := repo.FindByID(ctx, *entity.GetID())
		if err != nil {
			return fmt.Errorf("failed to reload %s: %w", c.label, err)
		}
		saved = PT(found)
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := *saved.GetID()
	c.invalidate(ctx, id)
	c.events.Dispatch(ctx, event.EntityEvent{Entity: c.entityName, Action: action, ID: id})
	return saved, nil
}

// FindAll returns one page of entities.
func (c *crud[T, PT]) FindAll(ctx context.Context, p repositories.Pageable) (page repositories.Page[*T], err error) {
	logger.WithCtx(ctx).Debug("Request to get a page of "+c.label, "page", p.Page, "size", p.Size)
	defer func() { metrics.RecordEntityOp(c.name, "find_all", outcome(err)) }()

	return c.repo.FindAll(ctx, p)
}

// FindOne returns the entity with id. A missing id is (nil, false, nil).
// Reads go through the cache; concurrent misses for one key share a single
// query.
func (c *crud[T, PT]) FindOne(ctx context.Context, id int64) (found PT, ok bool, err error) {
	logger.WithCtx(ctx).Debug("Request to get "+c.label, "id", id)
	defer func() {
		if err == nil && !ok {
			metrics.RecordEntityOp(c.name, "find_one", "not_found")
			return
		}
		metrics.RecordEntityOp(c.name, "find_one", outcome(err))
	}()

	key := c.key(id)
	var cached T
	if c.cache.Get(ctx, key, &cached) {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
		return PT(&cached), true, nil
	}
	if c.cache.Enabled() {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Shared by every caller collapsed onto this key, so one caller's
		// cancellation must not fail the others.
		loadCtx := context.WithoutCancel(ctx)
		epoch := c.cache.Epoch()
		row, err := c.repo.FindByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		if _, err := c.cache.SetSince(loadCtx, epoch, key, row); err != nil {
			logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
		}
		return row, nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return PT(v.(*T)), true, nil
}

// Exists reports whether a row with id is stored.
func (c *crud[T, PT]) Exists(ctx context.Context, id int64) (bool, error) {
	return c.repo.ExistsByID(ctx, id)
}

// Delete removes the entity with id. Deleting a missing id succeeds.
func (c *crud[T, PT]) Delete(ctx context.Context, id int64) (err error) {
	logger.WithCtx(ctx).Debug("Request to delete "+c.label, "id", id)
	defer func() { metrics.RecordEntityOp(c.name, "delete", outcome(err)) }()

	var removed int64
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.beforeDelete != nil {
			if err := c.beforeDelete(ctx, tx, id); err != nil {
				return err
			}
		}
		n, err := c.repo.WithTx(tx).DeleteByID(ctx, id)
		removed = n
		return err
	})
	if err != nil {
		return err
	}

	c.invalidate(ctx, id)
	if removed > 0 {
		c.events.Dispatch(ctx, event.EntityEvent{Entity: c.entityName, Action: event.Deleted, ID: id})
	}
	return nil
}

func (c *crud[T, PT]) key(id int64) string {
	return c.cache.Key(c.name, strconv.FormatInt(id, 10))
}

// invalidate drops the entity's own entry and every entry of entities that
// embed it. Failures are logged; entries expire with the TTL regardless.
func (c *crud[T, PT]) invalidate(ctx context.Context, id int64) {
	if !c.cache.Enabled() {
		return
	}
	log := logger.WithCtx(ctx)
	if err := c.cache.Forget(ctx, c.key(id)); err != nil {
		log.Warn("cache: forget failed", "entity", c.name, "id", id, "error", err)
	}
	for _, dep := range c.dependents {
		if err := c.cache.ForgetPrefix(ctx, c.cache.Key(dep)+":"); err != nil {
			log.Warn("cache: purge failed", "entity", dep, "error", err)
		}
	}
}
