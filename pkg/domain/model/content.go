package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content items are persisted as pretty-printed JSON arrays under
// data/<kind>.json in the target repository. IDs are client-generated
// and stable; timestamps are RFC3339 stamped at mutation time.

type ProjectLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Links       []ProjectLink `json:"links"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

type Blog struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	VideoURL  string `json:"videoUrl"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	// Legacy field name still found in older data/videos.json files.
	YouTubeURL string `json:"youtubeUrl,omitempty"`
}

// NewContentID generates a stable client-side identifier.
func NewContentID() string {
	return uuid.NewString()
}

// NowStamp is the timestamp format used for createdAt/updatedAt.
func NowStamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// Normalize migrates legacy youtubeUrl data to videoUrl and fills a
// derived thumbnail when none is set.
func (x *Video) Normalize() {
	if x.VideoURL == "" && x.YouTubeURL != "" {
		x.VideoURL = x.YouTubeURL
	}
	x.YouTubeURL = ""
	if x.Thumbnail == "" {
		x.Thumbnail = YouTubeThumbnail(x.VideoURL)
	}
}

// YouTubeThumbnail derives a thumbnail URL from a YouTube watch or short
// link. Returns empty for anything it cannot recognize.
func YouTubeThumbnail(videoURL string) string {
	id := youTubeVideoID(videoURL)
	if id == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/mqdefault.jpg"
}

func youTubeVideoID(videoURL string) string {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(u.Host, "www.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		// /embed/<id> and /shorts/<id> forms
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts") {
			return parts[1]
		}
	}
	return ""
}
