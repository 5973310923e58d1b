package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	coursesPath         = "/api/student/courses"
	chaptersPath        = "/api/chapters"
	knowledgePointsPath = "/api/knowledge-points"

	maxBodySize = 8 << 20
)

var ErrUnauthorized = errors.New("unauthorized")

// StatusError 非 2xx 响应
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.Path, e.Status, e.Body)
}

// Client 课程/章节/知识点接口的 HTTP 客户端，所有列表结果都经过 Normalize
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Path: path, Status: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// Courses 当前学生已选课程
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	body, err := c.get(ctx, coursesPath, nil)
	if err != nil {
		return nil, err
	}
	return parseAll(Normalize(body, FieldCourses), ParseCourse), nil
}

// Chapters 课程下全部章节（包含未发布）
func (c *Client) Chapters(ctx context.Context, courseID string) ([]Chapter, error) {
	q := url.Values{}
	q.Set("courseId", courseID)
	q.Set("status", "all")
	body, err := c.get(ctx, chaptersPath, q)
	if err != nil {
		return nil, err
	}
	return parseAll(Normalize(body, FieldChapters), ParseChapter), nil
}

func (c *Client) KnowledgePoints(ctx context.Context, courseID string) ([]KnowledgePoint, error) {
	q := url.Values{}
	q.Set("courseId", courseID)
	q.Set("limit", "1000")
	body, err := c.get(ctx, knowledgePointsPath, q)
	if err != nil {
		return nil, err
	}
	return parseAll(Normalize(body, FieldKnowledgePoints), ParseKnowledgePoint), nil
}
