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
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfreeman451/smartblueprint/pkg/agent"
	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to agent config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log := logger.Component("main")
		log.Error().Err(err).Msg("agent exited")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadAgent(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = agent.New(cfg).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
