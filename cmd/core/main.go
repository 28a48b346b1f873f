/*
 * Copyright 2025 Carver Automation Corporation.
 *
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

package main

import (
	"context"
	"flag"
	"os"

	"github.com/mfreeman451/smartblueprint/pkg/api"
	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/core"
	"github.com/mfreeman451/smartblueprint/pkg/lifecycle"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to core config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log := logger.Component("main")
		log.Error().Err(err).Msg("core exited")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadCore(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)

	c, err := core.New(cfg)
	if err != nil {
		return err
	}

	return lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "smartblueprint-core",
		Service:     c,
		Handler:     api.NewAPIServer(c, c.Tunnel(), cfg.AllowedOrigins),
	})
}
