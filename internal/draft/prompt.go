// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package draft

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"go.geekbrox.name/autoblog/internal/anime"
	"go.geekbrox.name/autoblog/internal/api/anilist"
	"go.geekbrox.name/autoblog/internal/api/reddit"
	"go.geekbrox.name/autoblog/internal/api/tmdb"
)

var (
	//go:embed prompt.tmpl
	promptTmpl string
	//go:embed revise.tmpl
	reviseTmpl string

	promptTemplate = template.Must(template.New("prompt").Parse(promptTmpl))
	reviseTemplate = template.Must(template.New("revise").Parse(reviseTmpl))
)

// redditPostsInPrompt is how many Reddit posts are quoted in a prompt.
const redditPostsInPrompt = 2

// slot is an image placed in a post.
type slot struct {
	Ref string
	Alt string
}

// Block returns the Markdown image followed by a blank line, or missing.
func (s slot) Block(missing string) string {
	if s.Ref == "" {
		return missing
	}
	return s.markdown() + "\n\n"
}

// Inline returns the Markdown image, or "없음".
func (s slot) Inline() string {
	if s.Ref == "" {
		return "없음"
	}
	return s.markdown()
}

func (s slot) markdown() string { return fmt.Sprintf("![%s](%s)", s.Alt, s.Ref) }

type promptData struct {
	PostTitle string

	Cover, Poster, Still1, Still2, Still3 slot

	TitleKorean  string
	TitleEnglish string
	TitleNative  string
	Genres       string
	Tags         string
	Studios      string
	AirDate      string
	Networks     string
	AniListScore string
	TMDBScore    string
	VoteAverage  float64
	AverageScore int

	Synopsis        string
	Overview        string
	Staff           string
	Characters      string
	Relations       string
	Recommendations string
	Streaming       string
	Trailer         string
	Video           string
	Reddit          string
}

// PostTitle returns the title of the post about rec.
func PostTitle(rec anime.Record, seasonLabel string) string {
	return fmt.Sprintf("[%s 애니] %s - 정보 & 리뷰", seasonLabel, rec.DisplayTitle())
}

// BuildPrompt returns the generation prompt for rec.
func BuildPrompt(rec anime.Record, extra *Extra, seasonLabel string, images ImageSet) string {
	if extra == nil {
		extra = &Extra{}
	}
	detail := extra.Detail
	if detail == nil {
		detail = &anilist.Detail{}
	}
	show := extra.Show
	if show == nil {
		show = &tmdb.Show{}
	}
	title := rec.DisplayTitle()

	d := promptData{
		PostTitle: PostTitle(rec, seasonLabel),

		Cover:  slot{images.Cover, "커버 이미지"},
		Poster: slot{images.Poster, title + " 포스터"},
		Still1: slot{images.Still1, title + " 스틸컷 1"},
		Still2: slot{images.Still2, title + " 스틸컷 2"},
		Still3: slot{images.Still3, title + " 스틸컷 3"},

		TitleKorean:  or(rec.TitleKorean, "-"),
		TitleEnglish: or(rec.TitleEnglish, "-"),
		TitleNative:  or(rec.TitleNative, "-"),
		Genres:       strings.Join(rec.Genres, ", "),
		Tags:         strings.Join(detail.Tags, ", "),
		Studios:      or(strings.Join(detail.Studios, ", "), "정보 없음"),
		AirDate:      or(show.FirstAirDate, "2026년 방영"),
		Networks:     or(strings.Join(show.Networks, ", "), "일본"),
		AniListScore: "-",
		TMDBScore:    "정보 없음",
		VoteAverage:  show.VoteAverage,

		Synopsis: or(rec.Synopsis, "-"),
		Overview: or(show.Overview, "(TMDB 한국어 정보 없음)"),
		Trailer:  or(detail.TrailerURL, show.YouTubeURL(), "(없음)"),
		Video:    "(없음)",
	}
	if rec.AverageScore != nil {
		d.AverageScore = *rec.AverageScore
		if d.AverageScore != 0 {
			d.AniListScore = strconv.Itoa(d.AverageScore)
		}
	}
	if show.VoteAverage != 0 {
		d.TMDBScore = fmt.Sprintf("%.1f/10 (%s명 평가)", show.VoteAverage, humanize.Comma(int64(show.VoteCount)))
	}

	d.Staff = or(lines(detail.Staff, func(s anilist.Staff) string {
		return fmt.Sprintf("- %s (%s)", s.Name, s.Role)
	}), "정보 없음")
	d.Characters = or(lines(detail.Characters, func(c anilist.Character) string {
		return fmt.Sprintf("- %s (%s) — CV: %s [%s]", c.Name, c.NameNative, c.VoiceActor, c.Role)
	}), "정보 없음")
	d.Relations = or(lines(detail.Relations, func(r anilist.Relation) string {
		return fmt.Sprintf("- %s (%s, %s)", r.Title, r.Relation, r.Format)
	}), "없음")
	d.Recommendations = or(lines(detail.Recommendations, func(r anilist.Recommendation) string {
		return fmt.Sprintf("- %s (AniList %d/100)", r.Title, r.Score)
	}), "없음")

	var streaming []string
	for _, site := range anilist.StreamingSites {
		if u, ok := detail.Streaming[site]; ok {
			streaming = append(streaming, fmt.Sprintf("- %s: %s", site, u))
		}
	}
	d.Streaming = or(strings.Join(streaming, "\n"), "정보 없음")

	if len(extra.Videos) > 0 {
		v := extra.Videos[0]
		d.Video = fmt.Sprintf("- [%s](%s) (채널: %s)", v.Title, v.URL, v.Channel)
	}

	posts := extra.Posts
	if len(posts) > redditPostsInPrompt {
		posts = posts[:redditPostsInPrompt]
	}
	d.Reddit = or(lines(posts, func(p reddit.Post) string {
		return fmt.Sprintf("- r/anime 인기 글: \"%s\" (👍 %d, 💬 %d개 댓글)", p.Title, p.Score, p.NumComments)
	}), "(Reddit 데이터 없음)")

	return execute(promptTemplate, d)
}

// BuildRevisionPrompt returns the prompt asking to rewrite current according
// to instruction.
func BuildRevisionPrompt(current, instruction string) string {
	return execute(reviseTemplate, struct{ Current, Instruction string }{current, instruction})
}

func execute(t *template.Template, data any) string {
	var sb strings.Builder
	// Templates only reference fields and methods that exist on data.
	if err := t.Execute(&sb, data); err != nil {
		panic(err)
	}
	return sb.String()
}

func lines[T any](items []T, format func(T) string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, format(it))
	}
	return strings.Join(out, "\n")
}

func or(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
