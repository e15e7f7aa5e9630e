package model

// SiteContent is the denormalized document the front end renders
// directly. Field names and nesting are part of the contract with the
// static site and must stay stable across builds.
type SiteContent struct {
	Hero       HeroSection       `json:"hero"`
	Snapshot   SnapshotSection   `json:"snapshot"`
	Philosophy PhilosophySection `json:"philosophy"`
	Projects   ProjectsSection   `json:"projects"`
	Stats      *AggregatedStats  `json:"stats"`
	Footer     FooterSection     `json:"footer"`
}

type HeroContact struct {
	Email    *string         `json:"email"`
	Location *string         `json:"location"`
	Company  *string         `json:"company"`
	Website  *string         `json:"website"`
	Social   []SocialAccount `json:"social"`
	Twitter  *string         `json:"twitter"`
}

type HeroSection struct {
	Eyebrow         string      `json:"eyebrow"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	MinorInfo       *string     `json:"minorInfo"`
	AvatarURL       *string     `json:"avatarUrl"`
	PrimaryCtaLabel string      `json:"primaryCtaLabel"`
	PrimaryCtaHref  string      `json:"primaryCtaHref"`
	Caption         string      `json:"caption"`
	Contact         HeroContact `json:"contact"`
}

type SnapshotSection struct {
	Title    string   `json:"title"`
	Items    []string `json:"items"`
	Subtitle *string  `json:"subtitle"`
}

type PhilosophyCard struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type PhilosophySection struct {
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Cards []PhilosophyCard `json:"cards"`
}

// SiteRepo is a repository card tailored for rendering.
type SiteRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Stars       int      `json:"stars"`
	Language    *string  `json:"language"`
	Topics      []string `json:"topics"`
	LastUpdated *string  `json:"lastUpdated"`
	Featured    bool     `json:"featured"`
}

type ProjectsSection struct {
	Title string     `json:"title"`
	Body  string     `json:"body"`
	Repos []SiteRepo `json:"repos"`
}

type FooterSection struct {
	Text        string `json:"text"`
	SubtleText  string `json:"subtleText"`
	GitHubLabel string `json:"githubLabel"`
	GitHubURL   string `json:"githubUrl"`
}

// SiteData is the full aggregation result handed to the artifact
// emitter: the typed data module inputs plus the rendered site content.
type SiteData struct {
	Owner        string
	ProfileType  string
	Profile      *Profile
	Repos        []*Repository
	ClientConfig ClientConfig
	Content      *SiteContent
}
