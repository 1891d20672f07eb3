package configs

type Config struct {
	// HTTP服务配置
	Server Server `json:"server" yaml:"server"`

	Database Database `json:"database" yaml:"database"`

	// 行情数据缓存参数
	Cache Cache `json:"cache" yaml:"cache"`

	// 外部数据源配置
	Providers Providers `json:"providers" yaml:"providers"`

	// 价格预测参数, 零值使用默认配置
	Forecast Forecast `json:"forecast" yaml:"forecast"`

	// AI 模型参数
	AIConfig AIConfig `json:"ai_config" yaml:"ai_config"`
}

type Server struct {
	Addr string `json:"addr" yaml:"addr"` // 监听地址, eg: 127.0.0.1:8080
}

type Database struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"` // 数据库连接字符串
}

type Cache struct {
	TTL          string `json:"ttl" yaml:"ttl"`                     // 数据新鲜度窗口, eg: 5m
	EvictAfter   string `json:"evict_after" yaml:"evict_after"`     // 未访问条目淘汰期限, eg: 1h
	Lookback     string `json:"lookback" yaml:"lookback"`           // 向上游请求的历史窗口, eg: 720h
	FetchTimeout string `json:"fetch_timeout" yaml:"fetch_timeout"` // 单次上游请求超时
}

type Providers struct {
	BinanceAPIKey    string            `json:"binance_api_key" yaml:"binance_api_key"`
	BinanceSecretKey string            `json:"binance_secret_key" yaml:"binance_secret_key"`
	BinanceSymbols   map[string]string `json:"binance_symbols" yaml:"binance_symbols"` // 代币地址→交易对
	CoinGeckoIDs     map[string]string `json:"coingecko_ids" yaml:"coingecko_ids"`     // 代币地址→coin id
	MetricsBaseURL   string            `json:"metrics_base_url" yaml:"metrics_base_url"` // 社交/新闻评分API
	MetricsAPIKey    string            `json:"metrics_api_key" yaml:"metrics_api_key"`
}

type Forecast struct {
	BaseConfidence float64 `json:"base_confidence" yaml:"base_confidence"` // 置信度基准, eg: 0.9
	HistoryPoints  int     `json:"history_points" yaml:"history_points"`   // 完整历史的数据点数, eg: 200
	SlopeWindow    int     `json:"slope_window" yaml:"slope_window"`       // 近期斜率采样点数, eg: 12
	MaxTrend       float64 `json:"max_trend" yaml:"max_trend"`             // 单周期趋势上限, eg: 0.1
}

type AIConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key"`       // AI服务API密钥, 为空时使用启发式策略
	ModelType string `json:"model_type" yaml:"model_type"` // openai或deepseek
	Model     string `json:"model" yaml:"model"`           // 模型名, 为空时使用各服务默认值
}
