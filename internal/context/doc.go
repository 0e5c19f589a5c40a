// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package context aggregates watched project folders into a prompt context
// block. Folders are read wholesale into memory, refreshed when the file
// system reports changes, and rendered as delimited file blocks that ride
// along with every outgoing chat request.
package context
