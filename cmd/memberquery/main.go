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

// Command memberquery serves the member query API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomoncle/memberquery"
	"github.com/tomoncle/memberquery/api"
	"github.com/tomoncle/memberquery/config"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/seed"
	"github.com/tomoncle/memberquery/utils"
)

var log = utils.NewLogger("APP")

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("memberquery stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(utils.EnvDefaultString("MEMBERQUERY_CONFIG", "configs/application.yaml"))
	if err != nil {
		return err
	}
	utils.ConfigureLogLevel(cfg.Logging.Level)
	utils.ConfigureLogFormat(cfg.Logging.Format)
	log.WithField("profile", cfg.Profile).Info("Configuration loaded")

	db, err := database.InitDB(ctx, cfg.ConfigLoader())
	if err != nil {
		return err
	}
	defer func() { _ = database.CloseDB() }()

	if err := seed.Run(ctx, db, cfg.Profile, cfg.Database.DataInitConfig.AutoInitOnStartup); err != nil {
		return err
	}

	handler := api.NewHandler(
		memberquery.NewMemberService(db),
		database.GetHealthStatus,
		utils.NewLogger("HTTP"),
		cfg.Server.CORSAllowedOrigins,
	)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("Starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Http server stopped")
	return nil
}
