package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
	Chat    ChatConfig    `yaml:"chat"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// APIConfig 는 마켓플레이스 백엔드 호출에 필요한 정적 설정을 담는다.
// APIKey 는 저장소에 커밋되지 않도록 MARKETPLACE_API_KEY 환경변수로 덮어쓸 수 있다.
type APIConfig struct {
	BaseURL       string `yaml:"base_url"`
	SocketURL     string `yaml:"socket_url"`
	StaticBaseURL string `yaml:"static_base_url"`
	APIKey        string `yaml:"api_key"`
	TimeoutMS     int    `yaml:"timeout_ms"`
}

// Timeout returns the request timeout, defaulting to 10s when unset.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ChatConfig 는 실시간 지원 채팅 채널의 튜닝 값들을 정의한다.
type ChatConfig struct {
	// AdminUserID 는 지원 채팅 상대방(관리자) 식별자이다.
	// 디렉터리 조회가 실패했을 때 합성 fallback 으로도 사용된다.
	AdminUserID string `yaml:"admin_user_id"`

	// DedupWindowMS 는 수신 이벤트 중복 판정에 사용하는 타임스탬프 버킷 폭이다.
	// 근거가 명확하지 않은 휴리스틱이라 상수 대신 설정으로 노출한다. 기본 1000ms.
	DedupWindowMS int `yaml:"dedup_window_ms"`

	// DedupCacheSize 는 최근 중복 키 캐시의 고정 용량이다. 기본 512.
	DedupCacheSize int `yaml:"dedup_cache_size"`

	// FailedMessageTTLMS 는 전송 실패 말풍선이 목록에서 제거되기까지의 시간이다. 기본 3000ms.
	FailedMessageTTLMS int `yaml:"failed_message_ttl_ms"`

	// MaxReconnectAttempts 는 소켓 재연결 시도 횟수 상한이다. 기본 5.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`

	// ReconnectDelayCapMS 는 재연결 지연의 상한이다. 기본 5000ms.
	ReconnectDelayCapMS int `yaml:"reconnect_delay_cap_ms"`
}

func (c ChatConfig) DedupWindow() time.Duration {
	if c.DedupWindowMS <= 0 {
		return time.Second
	}
	return time.Duration(c.DedupWindowMS) * time.Millisecond
}

func (c ChatConfig) FailedMessageTTL() time.Duration {
	if c.FailedMessageTTLMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.FailedMessageTTLMS) * time.Millisecond
}

func (c ChatConfig) ReconnectDelayCap() time.Duration {
	if c.ReconnectDelayCapMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ReconnectDelayCapMS) * time.Millisecond
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyEnvOverrides(&c)
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("MARKETPLACE_API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("MARKETPLACE_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MARKETPLACE_SOCKET_URL"); v != "" {
		c.API.SocketURL = v
	}
}

func applyDefaults(c *AppConfig) {
	if c.Chat.AdminUserID == "" {
		c.Chat.AdminUserID = "admin"
	}
	if c.Chat.DedupCacheSize <= 0 {
		c.Chat.DedupCacheSize = 512
	}
	if c.Chat.MaxReconnectAttempts <= 0 {
		c.Chat.MaxReconnectAttempts = 5
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
