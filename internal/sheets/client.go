// Package sheets reads single cell values through the Google Sheets API.
package sheets

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/registry"
)

// DefaultCallTimeout bounds every API call so a hung request cannot block
// shutdown indefinitely.
const DefaultCallTimeout = 10 * time.Second

const renderFormatted = "FORMATTED_VALUE"

// Client reads cells with the formatted (as displayed) rendering.
type Client struct {
	svc     *sheetsapi.Service
	timeout time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New authenticates with a service account key file and requests read-only scope.
func New(ctx context.Context, credentialsFile string, opts ...ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "create sheets client").
			Fatal().
			WithContext("credentials", credentialsFile).
			Build()
	}
	return newClient(svc, opts...), nil
}

// NewWithOptions builds a client from raw API options (endpoint overrides,
// custom HTTP clients).
func NewWithOptions(ctx context.Context, apiOpts []option.ClientOption, opts ...ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return newClient(svc, opts...), nil
}

func newClient(svc *sheetsapi.Service, opts ...ClientOption) *Client {
	c := &Client{svc: svc, timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the current textual value of the target cell. An empty cell
// is a present, empty value. Failures are target-scoped reader errors.
func (c *Client) Read(ctx context.Context, t registry.Target) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(t.SpreadsheetID, t.A1Range()).
		ValueRenderOption(renderFormatted).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.ReaderError(err, "read cell").
			WithContext("target", t.DisplayName).
			WithContext("range", t.A1Range()).
			Build()
	}
	return Normalize(firstValue(resp.Values)), nil
}

func firstValue(values [][]interface{}) any {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil
	}
	return values[0][0]
}

// Normalize renders a cell value as a consistent string: nil becomes "",
// everything is NFC-normalized so visually equal text compares equal.
func Normalize(v any) string {
	var s string
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		s = tv
	default:
		s = fmt.Sprint(tv)
	}
	return norm.NFC.String(s)
}
