// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package logging provides the process-wide structured logger.
//
// It wraps zerolog behind package-level event starters so call sites can
// write logging.Info().Str("route", route).Msg("...") without threading a
// logger through every constructor. Init is called once from main after
// configuration is loaded; before that, a JSON info-level logger writing
// to stderr is in effect.
package logging
