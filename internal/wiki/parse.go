package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// parseEnvelope mirrors the action=parse response: the rendered page HTML
// lives under parse.text["*"], and a missing page comes back as an error
// object instead.
type parseEnvelope struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// PageHTML fetches the rendered HTML body of a wiki page. It returns
// ErrPageNotFound when the wiki reports a missing title.
func (c *Client) PageHTML(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action": {"parse"},
		"page":   {title},
		"prop":   {"text"},
		"format": {"json"},
	}

	body, err := c.get(ctx, c.baseURL+"api.php?"+params.Encode())
	if err != nil {
		return "", err
	}

	var envelope parseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decoding parse response for %q: %w", title, err)
	}
	if envelope.Error != nil {
		return "", fmt.Errorf("%q: %s: %w", title, envelope.Error.Code, ErrPageNotFound)
	}
	if envelope.Parse.Text.Content == "" {
		return "", fmt.Errorf("%q: empty page body: %w", title, ErrPageNotFound)
	}
	return envelope.Parse.Text.Content, nil
}
