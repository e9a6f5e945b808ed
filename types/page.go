/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"github.com/tomoncle/memberquery/query"
)

const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// PageRequest describes an offset window, an optional filter, and ordering.
type PageRequest struct {
	offset int
	limit  int
	filter *query.Predicate
	orders []query.Order
}

// GetLimit returns the window size, DefaultLimit when unset and never more
// than MaxLimit.
func (p *PageRequest) GetLimit() int {
	switch {
	case p.limit < 1:
		return DefaultLimit
	case p.limit > MaxLimit:
		return MaxLimit
	}
	return p.limit
}

func (p *PageRequest) GetOffset() int {
	if p.offset < 0 {
		return 0
	}
	return p.offset
}

// GetFilter returns the filter; nil means every row.
func (p *PageRequest) GetFilter() *query.Predicate {
	return p.filter
}

func (p *PageRequest) GetOrders() []query.Order {
	return p.orders
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(offset, limit int, filter *query.Predicate, orders ...query.Order) *PageRequest {
	return &PageRequest{offset: offset, limit: limit, filter: filter, orders: orders}
}

// NewDefaultPageRequest constructs a PageRequest with no filter or ordering.
func NewDefaultPageRequest(offset, limit int) *PageRequest {
	return NewPageRequest(offset, limit, nil)
}

// Pagination holds one window of items and the total number of matches.
type Pagination[T any] struct {
	Offset int  `json:"offset"`
	Limit  int  `json:"limit"`
	Total  int  `json:"total"`
	Items  []*T `json:"items"`
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](offset, limit int) *Pagination[T] {
	return &Pagination[T]{Offset: offset, Limit: limit, Items: make([]*T, 0)}
}
