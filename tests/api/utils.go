package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"testing"
	"time"
)

const BaseURL = "http://localhost:8080/api"

var HttpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.IdleConnTimeout = 90 * time.Second

	HttpClient = &http.Client{
		Transport: t,
		Timeout:   30 * time.Second,
	}
}

// requireServer 服务未启动时跳过，黑盒用例只在有真实环境时执行
func requireServer(t *testing.T) {
	t.Helper()
	resp, err := HttpClient.Get("http://localhost:8080/health")
	if err != nil {
		t.Skipf("server not running: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("server unhealthy: status %d", resp.StatusCode)
	}
}

type AuthResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type SessionResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	HostID   uint   `json:"host_id"`
	IsPublic bool   `json:"is_public"`
	Status   string `json:"status"`
}

type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MessageResponse struct {
	ID          int64      `json:"id"`
	SenderID    uint       `json:"sender_id"`
	RecipientID uint       `json:"recipient_id"`
	Sender      PublicUser `json:"sender"`
	Recipient   PublicUser `json:"recipient"`
	Content     string     `json:"content"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateUser 注册并登录一个随机用户，返回凭据
func CreateUser(t *testing.T) *AuthResponse {
	t.Helper()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := rng.Intn(10000000)

	data := map[string]string{
		"name":          fmt.Sprintf("user_%d", suffix),
		"email":         fmt.Sprintf("user_%d@test.com", suffix),
		"password":      "password123",
		"date_of_birth": "2002-09-01",
		"campus":        "North",
	}
	body, _ := json.Marshal(data)
	resp, err := sendRequest("POST", BaseURL+"/auth/register", "", body)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	var auth AuthResponse
	if err := json.Unmarshal(resp, &auth); err != nil {
		t.Fatalf("failed to unmarshal auth response: %v", err)
	}
	if auth.Token == "" {
		t.Fatal("register returned an empty token")
	}
	return &auth
}

func CreateSession(t *testing.T, token string, public bool) *SessionResponse {
	t.Helper()
	data := map[string]any{
		"title":      "API test jam",
		"is_public":  public,
		"start_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"genre":      "jazz",
	}
	body, _ := json.Marshal(data)
	resp, err := sendRequest("POST", BaseURL+"/sessions", token, body)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	var session SessionResponse
	if err := json.Unmarshal(resp, &session); err != nil {
		t.Fatalf("failed to unmarshal session response: %v", err)
	}
	return &session
}

func sendRequest(method, url string, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
