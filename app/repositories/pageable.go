package repositories

import (
	"fmt"
	"math"
	"strings"
)

// Order is one sort key.
type Order struct {
	Property string
	Desc     bool
}

// Pageable is a zero-based page request.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Offset is the number of rows skipped before this page. ok is false when
// the offset does not fit in an int; such a page is always past the end.
func (p Pageable) Offset() (offset int, ok bool) {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return 0, false
	}
	return p.Page * p.Size, true
}

// Page is one slice of a larger result plus the total row count.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// TotalPages is ceil(TotalElements / Size).
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// NewPageable clamps page and size and parses sort expressions of the form
// "prop[,prop...][,asc|desc]":
//
//	NewPageable(0, 20, 2000, []string{"name,desc", "id"})
func NewPageable(page, size, maxSize int, sort []string) (Pageable, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}

	p := Pageable{Page: page, Size: size}
	for _, expr := range sort {
		orders, err := parseSort(expr)
		if err != nil {
			return Pageable{}, err
		}
		p.Sort = append(p.Sort, orders...)
	}
	return p, nil
}

func parseSort(expr string) ([]Order, error) {
	parts := strings.Split(expr, ",")
	desc := false
	if n := len(parts); n > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[n-1])) {
		case "desc":
			desc = true
			parts = parts[:n-1]
		case "asc":
			parts = parts[:n-1]
		}
	}

	var orders []Order
	for _, prop := range parts {
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		orders = append(orders, Order{Property: prop, Desc: desc})
	}
	if len(orders) == 0 && strings.TrimSpace(expr) != "" {
		return nil, &SortError{Property: expr}
	}
	return orders, nil
}

// SortError reports a sort property the entity does not have.
type SortError struct {
	Property string
}

func (e *SortError) Error() string {
	return fmt.Sprintf("cannot sort by %q", e.Property)
}
