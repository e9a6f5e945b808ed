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

package seed

import (
	"context"
	"fmt"

	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/model"
	"github.com/tomoncle/memberquery/repository"
	"github.com/tomoncle/memberquery/utils"

	"github.com/uptrace/bun"
)

// LocalProfile is the only profile that seeds sample data.
const LocalProfile = "local"

const memberCount = 100

var log = utils.NewLogger("SEED")

// Run seeds sample members when profile is local and enabled is set, and
// does nothing otherwise. A database that already holds teams is left
// untouched, so restarts against a file-backed store do not duplicate rows.
func Run(ctx context.Context, db *bun.DB, profile string, enabled bool) error {
	if profile != LocalProfile || !enabled {
		log.WithField("profile", profile).Debug("Sample data seeding skipped")
		return nil
	}

	teams, err := repository.NewRepository[model.Team](db).Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("count teams: %w", err)
	}
	if teams > 0 {
		log.WithField("teams", teams).Info("Sample data already present, seeding skipped")
		return nil
	}
	return InitMembers(ctx, db)
}

// InitMembers inserts teamA and teamB and member0..member99 in one
// transaction. memberN is N years old; even N join teamA, odd N teamB.
func InitMembers(ctx context.Context, db *bun.DB) error {
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		teams := repository.NewRepository[model.Team](tx)
		members := repository.NewRepository[model.Member](tx)

		teamA := &model.Team{Name: "teamA"}
		teamB := &model.Team{Name: "teamB"}
		if err := teams.CreateWithTx(ctx, tx, teamA, teamB); err != nil {
			return fmt.Errorf("insert teams: %w", err)
		}

		batch := make([]*model.Member, 0, memberCount)
		for i := 0; i < memberCount; i++ {
			team := teamA
			if i%2 != 0 {
				team = teamB
			}
			batch = append(batch, model.NewMember(fmt.Sprintf("member%d", i), i, team))
		}
		if err := members.CreateWithTx(ctx, tx, batch...); err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
		return nil
	})
	if err != nil {
		if is, kind := database.IsSqlError(err); is {
			log.WithField("sql_error", kind.String()).WithError(err).Error("Sample data seeding failed")
		}
		return err
	}

	log.WithField("members", memberCount).Info("Sample data seeded")
	return nil
}
