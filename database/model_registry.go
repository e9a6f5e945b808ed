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

package database

import (
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a table the bootstrap migration creates. Instance returns a
// Bun model pointer, Priority orders creation (lower first) so referenced
// tables exist before the tables pointing at them, and ForeignKeys lists
// the constraints emitted inline with CREATE TABLE.
type SQLModel interface {
	Instance() interface{}
	Priority() int
	ForeignKeys() []string
}

// ModelRegistry stores SQL models and exposes them in a deterministic order.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{
		models: make([]SQLModel, 0),
	}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

type ModelAdapter struct {
	instance    interface{}
	priority    int
	foreignKeys []string
}

// NewModelAdapter wraps a model pointer into an SQLModel. Each foreign key
// is written the way bun's CreateTableQuery.ForeignKey expects it, e.g.
// "(team_id) REFERENCES teams (id) ON DELETE SET NULL".
func NewModelAdapter(instance interface{}, priority int, foreignKeys ...string) SQLModel {
	return &ModelAdapter{
		instance:    instance,
		priority:    priority,
		foreignKeys: foreignKeys,
	}
}

func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

func (a *ModelAdapter) Priority() int {
	return a.priority
}

func (a *ModelAdapter) ForeignKeys() []string {
	return a.foreignKeys
}

// GetRegisteredModels returns all models registered in the default registry
// sorted by ascending priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}
