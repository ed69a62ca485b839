package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"mazad-client/config"
	"mazad-client/logger"
	"mazad-client/session"
	"mazad-client/trace"
)

// LoginRoute is where the pipeline sends the user after a hard auth failure.
const LoginRoute = "/auth/login"

// authExemptPaths 는 Authorization 헤더를 붙이지 않고, 401 도 가로채지 않는
// 인증 엔드포인트들이다. 로그인 시도 자체가 401 을 받으면 "잘못된 자격 증명"
// 으로 렌더링해야 하므로 리다이렉트를 강제하면 안 된다.
var authExemptPaths = []string{
	"auth/signin",
	"auth/signup",
	"auth/refresh",
	"auth/reset-password",
}

// Navigator 는 클라이언트 사이드 내비게이션 추상화다. 401 처리기가 현재
// 경로를 확인하고 로그인 페이지로 이동시킬 때 사용한다.
type Navigator interface {
	Current() string
	Redirect(path string)
}

// loggingRoundTripper 는 모든 아웃바운드 호출에 대해 공통 로깅과
// X-Request-Id / X-Span-Id 헤더 트레이싱을 수행한다. fallback 체인의 각
// 시도는 같은 request id 아래 span 1..n 으로 기록된다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	// 에러 로그에 요청 바디 스니펫을 남기기 위해 한 번 읽고 복원한다.
	var bodySnippet string
	if req.Body != nil {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			const maxBodyLog = 1024
			if len(bodyBytes) > maxBodyLog {
				bodySnippet = string(bodyBytes[:maxBodyLog])
			} else {
				bodySnippet = string(bodyBytes)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)

	fields := logger.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"duration":   duration.String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}

	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("api request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("api request done", fields)
	return resp, nil
}

// File is one part of a multipart upload.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Client 는 설정된 base URL, API 키, 타임아웃 위에서 get/post/put/patch/
// delete/postMultipart 표면을 제공하는 요청 파이프라인이다. 세션 스토어는
// 생성 시점에 주입되며(ambient lookup 금지), 비면제 경로의 401 응답은
// 세션 제거 + 로그아웃 훅 + 로그인 리다이렉트로 이어진다.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sessions   session.Store
	navigator  Navigator
	logoutHook func()
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithNavigator attaches the client-side navigation hook used on 401.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLogoutHook attaches a best-effort hook invoked after a forced logout.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.logoutHook = fn }
}

// WithHTTPClient replaces the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a pipeline client from the API config and an injected session
// store.
func New(cfg config.APIConfig, sessions session.Store, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: &loggingRoundTripper{inner: http.DefaultTransport},
		},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAuthPath reports whether relPath is one of the exempted auth endpoints.
func IsAuthPath(relPath string) bool {
	p := strings.TrimPrefix(relPath, "/")
	for _, exempt := range authExemptPaths {
		if p == exempt || strings.HasPrefix(p, exempt+"/") {
			return true
		}
	}
	return false
}

// newRequest 는 baseURL 과 상대 경로, 쿼리, 바디로 새로운 HTTP 요청을 만들고
// 공통 헤더(x-api-key, Authorization)를 붙인다.
// relPath 에 쿼리(?)가 포함되면 path.Join 이 손상시키므로 에러를 반환한다.
func (c *Client) newRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain query string (use query parameter instead): %s", relPath)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		base.Path = path.Join(base.Path, relPath)
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	c.attachAuth(req, relPath)
	return req, nil
}

// attachAuth 는 저장된 세션에 액세스 토큰이 있고 대상 경로가 인증 엔드포인트가
// 아닐 때 Authorization: Bearer 헤더를 붙인다. 이미 "Bearer " 접두사가 붙은
// 토큰이 저장돼 있어도 이중 접두사가 생기지 않는다(멱등).
func (c *Client) attachAuth(req *http.Request, relPath string) {
	if IsAuthPath(relPath) || c.sessions == nil {
		return
	}
	sess, ok := c.sessions.Load()
	if !ok || !sess.Authenticated() {
		return
	}
	token := sess.Tokens.AccessToken
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	req.Header.Set("Authorization", token)
}

// do 는 한 번의 호출을 실행하고 바디를 정규화한다. 전송 실패는 그대로
// 반환되고(재시도 없음), 완료된 HTTP 교환은 상태 코드와 무관하게 Envelope 로
// 수렴한다. 401 부수효과는 호출당 최대 한 번만 일어난다.
func (c *Client) do(ctx context.Context, method, relPath string, query url.Values, body io.Reader, contentType string) (*Envelope, error) {
	if trace.RequestIDFromContext(ctx) == "" {
		ctx = trace.WithRequestAndSpan(ctx, trace.GenerateID(), 0)
	}

	req, err := c.newRequest(ctx, method, relPath, query, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !IsAuthPath(relPath) {
		c.handleUnauthorized()
	}

	env := Normalize(resp.StatusCode, raw)
	return &env, nil
}

// handleUnauthorized 는 비면제 경로의 401 에 대한 전역 처리다: 세션 제거,
// best-effort 로그아웃 훅, 이미 로그인 경로가 아니라면 로그인 페이지 이동.
// Clear 는 빈 슬롯에 대해 no-op 이므로 중복 호출에도 안전하다.
func (c *Client) handleUnauthorized() {
	if c.sessions != nil {
		if err := c.sessions.Clear(); err != nil {
			logger.WarnWithFields("failed to clear session after 401", logger.Fields{"error": err.Error()})
		}
	}
	if c.logoutHook != nil {
		c.logoutHook()
	}
	if c.navigator != nil && !strings.HasPrefix(c.navigator.Current(), LoginRoute) {
		c.navigator.Redirect(LoginRoute)
	}
}

func jsonBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) Get(ctx context.Context, relPath string, query url.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, relPath, query, nil, "")
}

func (c *Client) Post(ctx context.Context, relPath string, body any) (*Envelope, error) {
	r, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, relPath, nil, r, "application/json")
}

func (c *Client) Put(ctx context.Context, relPath string, body any) (*Envelope, error) {
	r, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPut, relPath, nil, r, "application/json")
}

func (c *Client) Patch(ctx context.Context, relPath string, body any) (*Envelope, error) {
	r, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPatch, relPath, nil, r, "application/json")
}

func (c *Client) Delete(ctx context.Context, relPath string) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, relPath, nil, nil, "")
}

// PostRaw 는 정규화를 우회하고 전송 응답을 그대로 반환한다. 로그인 플로우처럼
// 원시 상태/헤더가 필요한 호출이 사용한다(returnFullResponse 에 해당).
// 응답 Body 의 Close 책임은 호출자에게 있다.
func (c *Client) PostRaw(ctx context.Context, relPath string, body any) (*http.Response, error) {
	if trace.RequestIDFromContext(ctx) == "" {
		ctx = trace.WithRequestAndSpan(ctx, trace.GenerateID(), 0)
	}
	r, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, relPath, nil, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// PostMultipart 는 필드와 파일들을 multipart/form-data 로 전송한다.
// 재판매자 신원 서류 업로드(identities/reseller)가 사용한다.
func (c *Client) PostMultipart(ctx context.Context, relPath string, fields map[string]string, files []File) (*Envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write multipart field %q: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, fmt.Errorf("create multipart file %q: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy multipart file %q: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, relPath, nil, &buf, w.FormDataContentType())
}
