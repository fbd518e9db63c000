package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mightbeian/HacMan/internal/domain/model"
)

// HTTPSource pulls the challenge set from the catalog owner's HTTP
// endpoint. The wire shape matches the push endpoint: a JSON object with
// a "challenges" array.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the given catalog URL.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type wireChallenge struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	BasePoints int    `json:"base_points"`
}

type wireCatalog struct {
	Challenges []wireChallenge `json:"challenges"`
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.ChallengeMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	var payload wireCatalog
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	metas := make([]model.ChallengeMeta, 0, len(payload.Challenges))
	for _, c := range payload.Challenges {
		metas = append(metas, model.ChallengeMeta{
			ID:         c.ID,
			Title:      c.Title,
			Category:   model.Category(c.Category),
			Difficulty: model.Difficulty(c.Difficulty),
			BasePoints: c.BasePoints,
		})
	}
	return metas, nil
}
