package models

import "math"

// Page size bounds applied to every paged query.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// PagedResult is one page of an ordered collection plus paging metadata.
// It is a transient, request-scoped value and is never persisted.
type PagedResult[T any] struct {
	Data            []T   `json:"data"`
	TotalCount      int64 `json:"totalCount"`
	CurrentPage     int   `json:"currentPage"`
	PageSize        int   `json:"pageSize"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagedResult wraps a data slice with derived paging metadata.
func NewPagedResult[T any](data []T, totalCount int64, page, size int) PagedResult[T] {
	if data == nil {
		data = make([]T, 0)
	}
	totalPages := int(math.Ceil(float64(totalCount) / float64(size)))
	return PagedResult[T]{
		Data:            data,
		TotalCount:      totalCount,
		CurrentPage:     page,
		PageSize:        size,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// EmptyPage returns a zero-item result for the requested page, with the
// same clamping as a real query.
func EmptyPage[T any](page, size int) PagedResult[T] {
	return NewPagedResult[T](nil, 0, ClampPage(page), ClampSize(size))
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](p PagedResult[T], f func(T) U) PagedResult[U] {
	data := make([]U, len(p.Data))
	for i, item := range p.Data {
		data[i] = f(item)
	}
	return PagedResult[U]{
		Data:            data,
		TotalCount:      p.TotalCount,
		CurrentPage:     p.CurrentPage,
		PageSize:        p.PageSize,
		TotalPages:      p.TotalPages,
		HasNextPage:     p.HasNextPage,
		HasPreviousPage: p.HasPreviousPage,
	}
}

// ClampPage forces the page number to be at least 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampSize forces the page size into [MinPageSize, MaxPageSize].
func ClampSize(size int) int {
	if size < MinPageSize {
		return MinPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
