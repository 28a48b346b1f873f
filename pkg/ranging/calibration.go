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

package ranging

import (
	"math"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// StartCalibration enters calibration mode, discarding earlier points.
func (e *Engine) StartCalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calibrating = true
	e.points = nil

	e.log.Info().Msg("calibration started")
}

// AddCalibrationPoint records a labeled feature vector. Outside
// calibration mode it is a no-op that returns false.
func (e *Engine) AddCalibrationPoint(x, y float64, features models.CalibrationFeatures) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.calibrating {
		e.log.Warn().Float64("x", x).Float64("y", y).Msg("calibration point ignored: not calibrating")
		return false
	}

	e.points = append(e.points, models.CalibrationPoint{
		X:         x,
		Y:         y,
		Features:  features,
		Timestamp: e.now(),
	})

	return true
}

// CompleteCalibration freezes the collected points and summarises them.
func (e *Engine) CompleteCalibration() (models.CalibrationSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.calibrating {
		return models.CalibrationSummary{}, ErrNotCalibrating
	}

	e.calibrating = false
	points := make([]models.CalibrationPoint, len(e.points))
	copy(points, e.points)

	summary := summarize(points)
	e.summary = &summary

	e.log.Info().Int("points", len(points)).Msg("calibration completed")

	return summary, nil
}

// Calibrating reports whether calibration mode is active.
func (e *Engine) Calibrating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.calibrating
}

// LastCalibration returns the most recently frozen calibration set.
func (e *Engine) LastCalibration() (models.CalibrationSummary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.summary == nil {
		return models.CalibrationSummary{}, false
	}

	return *e.summary, true
}

func summarize(points []models.CalibrationPoint) models.CalibrationSummary {
	s := models.CalibrationSummary{Points: points}
	if len(points) == 0 {
		return s
	}

	s.Bounds = models.BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}

	var rttSum, distSum float64

	var rttN, distN int

	for _, p := range points {
		s.Bounds.MinX = math.Min(s.Bounds.MinX, p.X)
		s.Bounds.MinY = math.Min(s.Bounds.MinY, p.Y)
		s.Bounds.MaxX = math.Max(s.Bounds.MaxX, p.X)
		s.Bounds.MaxY = math.Max(s.Bounds.MaxY, p.Y)

		for _, v := range p.Features.RTT {
			rttSum += v
			rttN++
		}

		for _, v := range p.Features.PingDistance {
			distSum += v
			distN++
		}
	}

	if rttN > 0 {
		s.MeanRTT = rttSum / float64(rttN)
	}

	if distN > 0 {
		s.MeanDistance = distSum / float64(distN)
	}

	return s
}
