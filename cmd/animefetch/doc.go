// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Animefetch fetches the most popular anime of the current season from AniList,
merges MyAnimeList scores into them and writes the result to
seasonal_top_anime.json in the data directory.

# Usage

	$ animefetch [-dir DIR] [-n COUNT] [-v]

The data directory defaults to $AUTOBLOG_DIR or ./data.

# Environment

MAL_CLIENT_ID enables the MyAnimeList merge. Without it only AniList data is
written.
*/
package main

import (
	_ "embed"

	"go.geekbrox.name/autoblog/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
