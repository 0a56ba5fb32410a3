// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the static assets and HTML templates served by the
// application.
package web

import "embed"

// Static holds the bundled JavaScript and CSS assets, served under /static/.
//
//go:embed static
var Static embed.FS

// Templates holds the server-rendered HTML templates.
//
//go:embed templates
var Templates embed.FS
