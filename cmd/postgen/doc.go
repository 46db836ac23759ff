// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Postgen drafts Korean blog posts about the anime fetched by animefetch.

For every anime it collects extra material from AniList, TMDB, YouTube and
Reddit, downloads up to five images and asks a language model to write the
post. Drafts are written to the posts directory as Markdown.

# Usage

	$ postgen [-dir DIR] [-v]
	$ postgen -revise PATH -instruction TEXT

The second form rewrites an existing draft following the instruction.

# Environment

	ANTHROPIC_API_KEY  Claude, the primary model
	GOOGLE_API_KEY     Gemini, used when Claude is rate limited or not configured
	TMDB_API_KEY       posters, stills and trailers
	YOUTUBE_API_KEY    trailer search
	AUTOBLOG_CACHE     API response cache: mem:, file:PATH, sqlite:PATH or a
	                   postgres:// URL (default mem:)
*/
package main

import (
	_ "embed"

	"go.geekbrox.name/autoblog/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
