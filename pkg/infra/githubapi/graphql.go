package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/safe"
)

// contributionQuery is bounded to one calendar year: the upstream
// contributionsCollection query rejects ranges longer than a year.
const contributionQuery = `
query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type graphqlEnvelope struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionResponse struct {
	Data struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// YearContributions sums the contribution calendar for one year.
func (x *Client) YearContributions(ctx context.Context, login string, year int, token types.AccessToken) (int, error) {
	envelope := graphqlEnvelope{
		Query: contributionQuery,
		Variables: map[string]any{
			"login": login,
			"from":  fmt.Sprintf("%04d-01-01T00:00:00Z", year),
			"to":    fmt.Sprintf("%04d-12-31T23:59:59Z", year),
		},
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to marshal GraphQL envelope")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to build GraphQL request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "GraphQL request failed", goerr.V("year", year))
	}
	defer safe.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return 0, goerr.New("GraphQL request failed",
			goerr.V("status", resp.StatusCode),
			goerr.V("year", year),
			goerr.V("body", string(raw)),
		)
	}

	var parsed contributionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, goerr.Wrap(err, "failed to decode GraphQL response", goerr.V("year", year))
	}

	// GraphQL reports application errors inside 200 responses.
	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			messages = append(messages, e.Message)
		}
		return 0, goerr.New("GraphQL errors", goerr.V("errors", messages), goerr.V("year", year))
	}

	var total int
	for _, week := range parsed.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			if day.ContributionCount > 0 {
				total += day.ContributionCount
			}
		}
	}
	return total, nil
}
