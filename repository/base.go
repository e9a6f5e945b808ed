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

type baseRepositoryImpl[T any] struct {
	db bun.IDB
}

// NewRepository returns a generic repository backed by db, which may be a
// *bun.DB or a bun.Tx.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().
		Model(&entity).
		Where("?TableAlias.? = ?", bun.Ident("id"), id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

// List returns the entities matching filter; a nil filter returns all.
func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *query.Predicate, orders ...query.Order) ([]*T, error) {
	entities := make([]*T, 0)
	q := query.Where(r.db.NewSelect().Model(&entities), filter)
	q = query.OrderBy(q, orders...)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *query.Predicate) (int, error) {
	return query.Where(r.db.NewSelect().Model((*T)(nil)), filter).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	pagination := types.NewDefaultPagination[T](pageRequest.GetOffset(), pageRequest.GetLimit())

	total, err := r.Count(ctx, pageRequest.GetFilter())
	if err != nil || total == 0 {
		return pagination, err
	}

	entities := make([]*T, 0)
	q := query.Where(r.db.NewSelect().Model(&entities), pageRequest.GetFilter())
	err = query.OrderBy(q, pageRequest.GetOrders()...).
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetLimit()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

// CreateWithTx inserts entities through tx in one statement and fills in
// their generated keys.
func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}
