package sdk

import (
	"context"
	"net/url"

	"github.com/AlibekovAA/notes/internal/docstore"
)

type addResult struct {
	ID string `json:"id"`
}

type queryResult struct {
	Documents []docstore.Document `json:"documents"`
}

func documentPath(collection string, id ...string) string {
	p := "/api/documents/" + url.PathEscape(collection)
	for _, part := range id {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (c *Client) Put(ctx context.Context, collection, id string, fields docstore.Fields) error {
	resp, err := c.request(ctx, true).SetBody(fields).Put(documentPath(collection, id))
	return c.checkSession(ctx, resp, err, "document_put")
}

// Get returns an error matching docstore.ErrNotFound when the document is absent.
func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var doc docstore.Document
	resp, err := c.request(ctx, true).SetResult(&doc).Get(documentPath(collection, id))
	if err := c.checkSession(ctx, resp, err, "document_get"); err != nil {
		return docstore.Document{}, err
	}
	if doc.Fields == nil {
		doc.Fields = docstore.Fields{}
	}
	return doc, nil
}

func (c *Client) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	var out addResult
	resp, err := c.request(ctx, true).SetBody(fields).SetResult(&out).Post(documentPath(collection))
	if err := c.checkSession(ctx, resp, err, "document_add"); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	var out queryResult
	resp, err := c.request(ctx, true).
		SetQueryParam("field", filter.Field).
		SetQueryParam("value", filter.Value).
		SetResult(&out).
		Get(documentPath(collection))
	if err := c.checkSession(ctx, resp, err, "document_query"); err != nil {
		return nil, err
	}
	for i := range out.Documents {
		if out.Documents[i].Fields == nil {
			out.Documents[i].Fields = docstore.Fields{}
		}
	}
	return out.Documents, nil
}

func (c *Client) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	resp, err := c.request(ctx, true).SetBody(fields).Patch(documentPath(collection, id))
	return c.checkSession(ctx, resp, err, "document_merge")
}

func (c *Client) Remove(ctx context.Context, collection, id string) error {
	resp, err := c.request(ctx, true).Delete(documentPath(collection, id))
	return c.checkSession(ctx, resp, err, "document_remove")
}

var _ docstore.Store = (*Client)(nil)
