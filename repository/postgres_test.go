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

package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/database/dbtest"
	"github.com/tomoncle/memberquery/query"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/seed"
)

// Run: MEMBERQUERY_IT=1 go test -run Postgres ./repository/...
func TestPostgresSearch(t *testing.T) {
	if testing.Short() || os.Getenv("MEMBERQUERY_IT") != "1" {
		t.Skip("set MEMBERQUERY_IT=1 to run the postgres integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "memberquery",
				"POSTGRES_USER":     "test_user",
				"POSTGRES_PASSWORD": "test_password",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "postgres"
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.Username = "test_user"
	cfg.Password = "test_password"
	cfg.DBName = "memberquery"
	cfg.HealthCheckInterval = 0

	db := dbtest.Open(t, cfg)
	require.NoError(t, seed.InitMembers(ctx, db))
	repo := repository.NewMemberQueryRepository(db)

	cond := query.MemberSearchCondition{TeamName: "teamB"}.WithAgeGoe(10).WithAgeLoe(20)
	list, err := repo.Search(ctx, cond)
	require.NoError(t, err)
	joined, err := repo.SearchByBuilder(ctx, cond)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"member11", "member13", "member15", "member17", "member19"}, usernames(list))
	assert.ElementsMatch(t, usernames(list), usernames(joined))

	stats, err := repo.AgeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Count)
	assert.InDelta(t, 49.5, stats.Avg, 0.0001)

	oldest, err := repo.Oldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"member99"}, memberNames(oldest))
}
