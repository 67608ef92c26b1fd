package imagehost

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Client uploads images to the external image hosting service and returns
// CDN-backed secure URLs.
type Client struct {
	uploadURL  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a new image host client.
func NewClient(uploadURL, apiKey, apiSecret string) *Client {
	return &Client{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// UploadResult is the subset of the upload response the server stores.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// UploadImage uploads an image into the given folder, asking the host to
// bound it to width x height. Returns the hosted secure URL.
func (c *Client) UploadImage(ctx context.Context, file io.Reader, filename, folder string, width, height int) (UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("failed to copy file contents: %w", err)
	}

	timestamp := time.Now().Unix()
	fields := map[string]string{
		"folder":    folder,
		"width":     strconv.Itoa(width),
		"height":    strconv.Itoa(height),
		"crop":      "limit",
		"api_key":   c.apiKey,
		"timestamp": strconv.FormatInt(timestamp, 10),
		"signature": c.sign(folder, timestamp),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return UploadResult{}, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "StudyHub-Server/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return UploadResult{}, fmt.Errorf("image host error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return result, nil
}

// sign produces the request signature the host expects:
// SHA256("folder=<folder>&timestamp=<ts><secret>") hex encoded.
func (c *Client) sign(folder string, timestamp int64) string {
	payload := fmt.Sprintf("folder=%s&timestamp=%d%s", folder, timestamp, c.apiSecret)
	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%x", sum)
}
