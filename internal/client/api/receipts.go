package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// UploadReceipt stores a receipt image and returns its key.
func (c *Client) UploadReceipt(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.conn.NewRequest(ctx, http.MethodPost, "/api/receipts", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.conn.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out ReceiptUpload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Key, nil
}

// DownloadReceipt writes the receipt stored under key to w and returns its
// content type.
func (c *Client) DownloadReceipt(ctx context.Context, key string, w io.Writer) (string, error) {
	req, err := c.conn.NewRequest(ctx, http.MethodGet, "/api/receipts/"+url.PathEscape(key), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.conn.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}
