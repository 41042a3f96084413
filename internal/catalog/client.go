package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arunkumar2k5/clapclient/internal/observability"
	"github.com/arunkumar2k5/clapclient/internal/parts"
)

const requestTimeout = 60 * time.Second

// Fetcher looks up specification records for a list of part numbers.
// Implemented by *Client; the compare service accepts the interface so
// tests can stub the catalog.
type Fetcher interface {
	FetchSpecs(ctx context.Context, partNumbers []string) ([]*parts.Record, error)
}

var _ Fetcher = (*Client)(nil)

// Client talks to the parts-catalog API: one OAuth2 token exchange per
// batch, then one keyword search per part number.
type Client struct {
	clientID     string
	clientSecret string
	authURL      string
	searchURL    string
	http         *http.Client
}

func NewClient(clientID, clientSecret, authURL, searchURL string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("catalog credentials are required (set CLAP_CATALOG_CLIENT_ID / CLAP_CATALOG_CLIENT_SECRET)")
	}
	if authURL == "" || searchURL == "" {
		return nil, errors.New("catalog auth and search URLs are required")
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      authURL,
		searchURL:    searchURL,
		http:         &http.Client{Timeout: requestTimeout},
	}, nil
}

// Token performs the client-credentials grant and returns a bearer
// token. A failed grant is fatal for the batch: without a token no
// search can run.
func (c *Client) Token(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}
	return tok.AccessToken, nil
}

// FetchSpecs looks up every part number in order. Lookup failures never
// abort the batch: a non-success search or an empty result degrades to
// a placeholder record carrying an Error attribute.
func (c *Client) FetchSpecs(ctx context.Context, partNumbers []string) ([]*parts.Record, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*parts.Record, 0, len(partNumbers))
	for _, pn := range partNumbers {
		pn = strings.TrimSpace(pn)
		if pn == "" {
			continue
		}
		rec, err := c.searchOne(ctx, token, pn)
		if err != nil {
			// Degrade, keep going.
			log.Printf("[catalog] %s: %v", pn, err)
			observability.CatalogLookupsTotal.WithLabelValues("error").Inc()
			rec = placeholder(pn, err.Error())
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) searchOne(ctx context.Context, token, partNumber string) (*parts.Record, error) {
	body, err := json.Marshal(searchRequest{Keywords: partNumber, RecordCount: 1})
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.clientID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(result.Products) == 0 {
		observability.CatalogLookupsTotal.WithLabelValues("missing").Inc()
		return placeholder(partNumber, "no product found"), nil
	}

	p := result.Products[0]
	rec := parts.NewRecord()
	rec.Set(parts.AttrPartNumber, strings.ToUpper(partNumber))
	rec.Set(parts.AttrManufacturer, p.Manufacturer.Name)
	rec.Set(parts.AttrPartStatus, p.ProductStatus.Status)
	for _, param := range p.Parameters {
		if param.ParameterText == "" {
			continue
		}
		rec.Set(param.ParameterText, param.ValueText)
	}
	observability.CatalogLookupsTotal.WithLabelValues("found").Inc()
	return rec, nil
}

func placeholder(partNumber, msg string) *parts.Record {
	rec := parts.NewRecord()
	rec.Set(parts.AttrPartNumber, strings.ToUpper(partNumber))
	rec.Set(parts.AttrError, msg)
	return rec
}
