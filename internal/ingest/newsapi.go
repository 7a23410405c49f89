package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIClient fetches keyword-matched articles from NewsAPI.
type NewsAPIClient struct {
	apiKey          string
	baseURL         string
	economicSources string
	pageSize        int
	httpClient      *http.Client
}

// NewNewsAPIClient creates a NewsAPI client.
func NewNewsAPIClient(apiKey, economicSources string, pageSize int) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:          apiKey,
		baseURL:         newsAPIBaseURL,
		economicSources: economicSources,
		pageSize:        pageSize,
		httpClient:      defaultHTTPClient(),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *NewsAPIClient) SetBaseURL(u string) { c.baseURL = u }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchGeneralNews searches for articles matching any of the keywords,
// newest first.
func (c *NewsAPIClient) FetchGeneralNews(ctx context.Context, keywords []string) ([]models.Article, error) {
	params := url.Values{}
	params.Set("q", quotedOrQuery(keywords))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

	return c.search(ctx, params, models.CategoryGeneral)
}

// FetchEconomicNews searches authoritative economic sources for macro
// keywords; resulting articles are categorized as economic events.
func (c *NewsAPIClient) FetchEconomicNews(ctx context.Context, keywords []string) ([]models.Article, error) {
	params := url.Values{}
	params.Set("q", quotedOrQuery(keywords))
	params.Set("sources", c.economicSources)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

	return c.search(ctx, params, models.CategoryEconomicEvent)
}

func (c *NewsAPIClient) search(ctx context.Context, params url.Values, category string) ([]models.Article, error) {
	params.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + "/everything?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, perrors.NewIngestError("newsapi", params.Get("q"), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, perrors.NewIngestError("newsapi", params.Get("q"), err)
	}
	defer drainAndClose(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, perrors.NewIngestError("newsapi", params.Get("q"), err)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, perrors.NewIngestError("newsapi", params.Get("q"), err)
	}
	if payload.Status != "ok" {
		return nil, perrors.NewIngestError("newsapi", params.Get("q"), fmt.Errorf("api status %q: %s", payload.Status, payload.Message))
	}

	var articles []models.Article
	for _, a := range payload.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		articles = append(articles, models.Article{
			Source:      a.Source.Name,
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Category:    category,
		})
	}
	return articles, nil
}

// quotedOrQuery joins keywords into a quoted OR search expression.
func quotedOrQuery(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = `"` + k + `"`
	}
	return strings.Join(quoted, " OR ")
}
