package infra

import (
	"net/http"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
)

type Clients struct {
	github     interfaces.GitHub
	device     interfaces.DeviceAuthorizer
	contents   interfaces.ContentRepository
	httpClient HTTPClient
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHub() interfaces.GitHub {
	return x.github
}
func (x *Clients) Device() interfaces.DeviceAuthorizer {
	return x.device
}
func (x *Clients) Contents() interfaces.ContentRepository {
	return x.contents
}
func (x *Clients) HTTPClient() HTTPClient {
	return x.httpClient
}

func WithGitHub(client interfaces.GitHub) Option {
	return func(x *Clients) {
		x.github = client
	}
}

func WithDevice(client interfaces.DeviceAuthorizer) Option {
	return func(x *Clients) {
		x.device = client
	}
}

func WithContents(repo interfaces.ContentRepository) Option {
	return func(x *Clients) {
		x.contents = repo
	}
}

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Clients) {
		x.httpClient = client
	}
}
