// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package anilist

import (
	"context"
	"slices"
	"strings"
)

const detailQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    studios(isMain: true) { nodes { name } }
    staff(perPage: 5, sort: [RELEVANCE]) {
      nodes { name { full native } primaryOccupations }
    }
    characters(perPage: 6, sort: [ROLE, RELEVANCE]) {
      nodes { name { full native } image { medium } }
      edges { role voiceActors(language: JAPANESE) { name { full native } } }
    }
    relations {
      nodes { id title { romaji english } type format status }
      edges { relationType }
    }
    recommendations(perPage: 3) {
      nodes { mediaRecommendation { title { romaji english } averageScore } }
    }
    tags { name rank isMediaSpoiler }
    trailer { id site }
    externalLinks { url site }
  }
}`

// Detail is the extra information used when drafting a post.
type Detail struct {
	Studios         []string          `json:"studios"`
	Staff           []Staff           `json:"staff"`
	Characters      []Character       `json:"characters"`
	Relations       []Relation        `json:"relations"`
	Recommendations []Recommendation  `json:"recommendations"`
	Tags            []string          `json:"tags"`
	TrailerURL      string            `json:"trailer_url"`
	Streaming       map[string]string `json:"streaming"`
}

// Staff is a staff member and their main occupations.
type Staff struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Character is a character with its Japanese voice actor.
type Character struct {
	Name       string `json:"name"`
	NameNative string `json:"name_native"`
	Role       string `json:"role"`
	VoiceActor string `json:"voice_actor"`
	Image      string `json:"image"`
}

// Relation is a related work.
type Relation struct {
	Title    string `json:"title"`
	Relation string `json:"relation"`
	Format   string `json:"format"`
}

// Recommendation is a similar work recommended by AniList users.
type Recommendation struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

// StreamingSites are the external link sites kept in [Detail.Streaming].
var StreamingSites = []string{"Crunchyroll", "Netflix", "Amazon Prime Video", "Funimation", "Bilibili"}

const (
	minTagRank = 60
	maxTags    = 8
)

type name struct {
	Full   string `json:"full"`
	Native string `json:"native"`
}

type detailData struct {
	Media *struct {
		Studios struct {
			Nodes []struct {
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"studios"`
		Staff struct {
			Nodes []struct {
				Name               name     `json:"name"`
				PrimaryOccupations []string `json:"primaryOccupations"`
			} `json:"nodes"`
		} `json:"staff"`
		Characters struct {
			Nodes []struct {
				Name  name `json:"name"`
				Image struct {
					Medium string `json:"medium"`
				} `json:"image"`
			} `json:"nodes"`
			Edges []struct {
				Role        string `json:"role"`
				VoiceActors []struct {
					Name name `json:"name"`
				} `json:"voiceActors"`
			} `json:"edges"`
		} `json:"characters"`
		Relations struct {
			Nodes []struct {
				Title  title  `json:"title"`
				Format string `json:"format"`
			} `json:"nodes"`
			Edges []struct {
				RelationType string `json:"relationType"`
			} `json:"edges"`
		} `json:"relations"`
		Recommendations struct {
			Nodes []struct {
				MediaRecommendation *struct {
					Title        title `json:"title"`
					AverageScore int   `json:"averageScore"`
				} `json:"mediaRecommendation"`
			} `json:"nodes"`
		} `json:"recommendations"`
		Tags []struct {
			Name           string `json:"name"`
			Rank           int    `json:"rank"`
			IsMediaSpoiler bool   `json:"isMediaSpoiler"`
		} `json:"tags"`
		Trailer *struct {
			ID   string `json:"id"`
			Site string `json:"site"`
		} `json:"trailer"`
		ExternalLinks []struct {
			URL  string `json:"url"`
			Site string `json:"site"`
		} `json:"externalLinks"`
	} `json:"Media"`
}

// Detail fetches studios, staff, characters, relations, recommendations, tags,
// trailer and streaming links of the anime with the given AniList id. It
// returns nil if AniList has no such media.
func (c *Client) Detail(ctx context.Context, id int) (*Detail, error) {
	data, err := query[detailData](ctx, c, detailQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	m := data.Media
	if m == nil {
		return nil, nil
	}

	d := &Detail{Streaming: make(map[string]string)}
	for _, s := range m.Studios.Nodes {
		d.Studios = append(d.Studios, s.Name)
	}
	for _, s := range m.Staff.Nodes {
		occ := s.PrimaryOccupations
		if len(occ) > 2 {
			occ = occ[:2]
		}
		d.Staff = append(d.Staff, Staff{Name: s.Name.Full, Role: strings.Join(occ, ", ")})
	}
	for i := range min(len(m.Characters.Nodes), len(m.Characters.Edges)) {
		node, edge := m.Characters.Nodes[i], m.Characters.Edges[i]
		ch := Character{
			Name:       node.Name.Full,
			NameNative: node.Name.Native,
			Role:       edge.Role,
			Image:      node.Image.Medium,
		}
		if len(edge.VoiceActors) > 0 {
			ch.VoiceActor = edge.VoiceActors[0].Name.Full
		}
		d.Characters = append(d.Characters, ch)
	}
	for i := range min(len(m.Relations.Nodes), len(m.Relations.Edges)) {
		node, edge := m.Relations.Nodes[i], m.Relations.Edges[i]
		d.Relations = append(d.Relations, Relation{
			Title:    node.Title.Romaji,
			Relation: edge.RelationType,
			Format:   node.Format,
		})
	}
	for _, r := range m.Recommendations.Nodes {
		if r.MediaRecommendation == nil {
			continue
		}
		d.Recommendations = append(d.Recommendations, Recommendation{
			Title: r.MediaRecommendation.Title.Romaji,
			Score: r.MediaRecommendation.AverageScore,
		})
	}
	for _, t := range m.Tags {
		if len(d.Tags) == maxTags {
			break
		}
		if !t.IsMediaSpoiler && t.Rank >= minTagRank {
			d.Tags = append(d.Tags, t.Name)
		}
	}
	if m.Trailer != nil && m.Trailer.Site == "youtube" {
		d.TrailerURL = "https://www.youtube.com/watch?v=" + m.Trailer.ID
	}
	for _, l := range m.ExternalLinks {
		if slices.Contains(StreamingSites, l.Site) {
			d.Streaming[l.Site] = l.URL
		}
	}
	return d, nil
}
