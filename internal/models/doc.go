// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models manages the local model inventory: listing installed
// models, pulling new ones with progress, deleting, and recommending models
// that fit the host's memory. Model names are opaque identifiers compared by
// exact match only.
package models
