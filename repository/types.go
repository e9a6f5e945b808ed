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

package repository

import (
	"context"

	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the read and write operations of a generic entity.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *query.Predicate, orders ...query.Order) ([]*T, error)

	Count(ctx context.Context, filter *query.Predicate) (int, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error
}

// TransactionRepository defines writes that join a caller-owned transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
}
