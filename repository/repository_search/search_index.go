package repository_search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mediavault/content-repository/domain/domain_content/content_interface"
	"github.com/mediavault/content-repository/domain/domain_content/content_models"
)

// httpSearchIndex 外部搜索服务的 HTTP 客户端：
// PUT {base}/indexes/{kind}/documents/{id}，请求体为 JSON 文档
type httpSearchIndex struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSearchIndex baseURL 为空时返回不做任何事的实现
func NewSearchIndex(baseURL, apiKey string, timeout time.Duration) content_interface.SearchIndex {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return NewNoopSearchIndex()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpSearchIndex{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *httpSearchIndex) UpdateDocument(ctx context.Context, kind content_models.Kind, doc *content_models.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("序列化搜索文档失败: %w", err)
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/documents/%s",
		s.baseURL, url.PathEscape(string(kind)), url.PathEscape(doc.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求搜索服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("搜索服务返回 %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

type noopSearchIndex struct{}

func NewNoopSearchIndex() content_interface.SearchIndex { return noopSearchIndex{} }

func (noopSearchIndex) UpdateDocument(context.Context, content_models.Kind, *content_models.SearchDocument) error {
	return nil
}
