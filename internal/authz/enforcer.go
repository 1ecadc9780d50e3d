// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package authz implements role-based authorization with Casbin. The
// role set is the compile-time enum in models (admin, editor, viewer);
// the permission table is the embedded policy, with admin inheriting
// editor and editor inheriting viewer.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/farescope/farescope/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resources checked by the API layer.
const (
	ResourceAnalytics     = "analytics"
	ResourceCMS           = "cms"
	ResourceUsers         = "users"
	ResourceNotifications = "notifications"
	ResourceCampaigns     = "campaigns"
	ResourceFlights       = "flights"
)

// Actions checked by the API layer.
const (
	ActionRead      = "read"
	ActionWrite     = "write"
	ActionExport    = "export"
	ActionBroadcast = "broadcast"
)

// Enforcer answers role → resource:action permission checks.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("loading casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("creating casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// Allowed reports whether role may perform action on resource. Unknown
// roles are denied.
func (e *Enforcer) Allowed(role models.Role, resource, action string) bool {
	ok, err := e.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		return false
	}
	return ok
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("adding policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("adding role inheritance %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}
