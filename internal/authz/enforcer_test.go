// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func TestPermissionTable(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		role     models.Role
		resource string
		action   string
		want     bool
	}{
		{models.RoleViewer, ResourceAnalytics, ActionRead, true},
		{models.RoleViewer, ResourceCMS, ActionRead, true},
		{models.RoleViewer, ResourceCMS, ActionWrite, false},
		{models.RoleViewer, ResourceUsers, ActionRead, false},
		{models.RoleViewer, ResourceAnalytics, ActionExport, false},

		{models.RoleEditor, ResourceAnalytics, ActionRead, true},
		{models.RoleEditor, ResourceAnalytics, ActionExport, true},
		{models.RoleEditor, ResourceCMS, ActionWrite, true},
		{models.RoleEditor, ResourceCampaigns, ActionWrite, true},
		{models.RoleEditor, ResourceUsers, ActionWrite, false},
		{models.RoleEditor, ResourceNotifications, ActionBroadcast, false},

		{models.RoleAdmin, ResourceUsers, ActionRead, true},
		{models.RoleAdmin, ResourceUsers, ActionWrite, true},
		{models.RoleAdmin, ResourceNotifications, ActionBroadcast, true},
		{models.RoleAdmin, ResourceCMS, ActionWrite, true},
		{models.RoleAdmin, ResourceAnalytics, ActionRead, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.resource+":"+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Allowed(tt.role, tt.resource, tt.action))
		})
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	assert.False(t, e.Allowed(models.Role("superuser"), ResourceAnalytics, ActionRead))
	assert.False(t, e.Allowed(models.Role(""), ResourceCMS, ActionRead))
}
