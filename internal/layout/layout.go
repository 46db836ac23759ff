// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package layout names the files and directories shared by the pipeline
// commands.
package layout

import (
	"cmp"
	"os"
	"path/filepath"
)

// DefaultRoot is used when neither a flag nor AUTOBLOG_DIR sets the root.
const DefaultRoot = "data"

// Layout is a data directory of the pipeline:
//
//	seasonal_top_anime.json  fetched anime
//	posts/                   drafts waiting to be published
//	images/                  downloaded post images
//	published/               published drafts
//	state/                   shared state of the actors
//	cookies.json             blog session cookies
type Layout struct {
	Root string
}

// FromEnv returns the layout rooted at flagValue, the AUTOBLOG_DIR variable
// looked up with getenv, or DefaultRoot, whichever is set first.
func FromEnv(flagValue string, getenv func(string) string) Layout {
	var env string
	if getenv != nil {
		env = getenv("AUTOBLOG_DIR")
	}
	return Layout{Root: cmp.Or(flagValue, env, DefaultRoot)}
}

func (l Layout) path(elem ...string) string {
	return filepath.Join(append([]string{l.Root}, elem...)...)
}

// Seasonal is the fetched anime file.
func (l Layout) Seasonal() string { return l.path("seasonal_top_anime.json") }

// Posts is the draft directory.
func (l Layout) Posts() string { return l.path("posts") }

// Images is the image directory. Drafts refer to it as ../images.
func (l Layout) Images() string { return l.path("images") }

// Published is where drafts go after publishing.
func (l Layout) Published() string { return l.path("published") }

// State is the shared state directory.
func (l Layout) State() string { return l.path("state") }

// Cookies is the blog session cookie file.
func (l Layout) Cookies() string { return l.path("cookies.json") }

// Create makes every directory of the layout.
func (l Layout) Create() error {
	for _, dir := range []string{l.Posts(), l.Images(), l.Published(), l.State()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
