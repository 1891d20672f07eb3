package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/analysis/llm"
	"github.com/ethan-cdwll/insight/internal/api"
	"github.com/ethan-cdwll/insight/internal/configs"
	"github.com/ethan-cdwll/insight/internal/data"
	"github.com/ethan-cdwll/insight/internal/data/cache"
	"github.com/ethan-cdwll/insight/internal/data/social"
	"github.com/ethan-cdwll/insight/internal/data/source"
	binanceSource "github.com/ethan-cdwll/insight/internal/data/source/binance"
	"github.com/ethan-cdwll/insight/internal/data/source/coingecko"
	"github.com/ethan-cdwll/insight/internal/data/storage"
)

var (
	flagconf string

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "../configs/config.json", "config path, eg: -conf config.json")
}

func main() {
	flag.Parse()

	// 加载配置
	config := &configs.Config{}
	configFile, err := os.ReadFile(flagconf)
	if err != nil {
		log.Error("Error reading config file", "err", err)
		return
	}

	if err := json.Unmarshal(configFile, config); err != nil {
		log.Error("Error parsing config file", "err", err)
		return
	}

	log.Debug("Loaded config", "config", config)

	// 初始化行情数据源：币安优先，CoinGecko兜底
	marketSource := source.NewFailover([]data.MarketDataSource{
		binanceSource.NewKlineSource(
			config.Providers.BinanceAPIKey,
			config.Providers.BinanceSecretKey,
			config.Providers.BinanceSymbols,
		),
		coingecko.NewChartSource(config.Providers.CoinGeckoIDs),
	}, log)

	log.Debug("init market source")

	seriesCache := cache.New(marketSource, cache.Options{
		TTL:          parseDuration(config.Cache.TTL),
		EvictAfter:   parseDuration(config.Cache.EvictAfter),
		Lookback:     parseDuration(config.Cache.Lookback),
		FetchTimeout: parseDuration(config.Cache.FetchTimeout),
	}, log)

	log.Debug("init series cache")

	storager, err := storage.NewPostgresStorage(config.Database.ConnStr)
	if err != nil {
		log.Error("Error creating storage", "err", err)
		return
	}

	log.Debug("init storager")

	socialProvider := social.NewMetricsClient(config.Providers.MetricsBaseURL, config.Providers.MetricsAPIKey)
	newsProvider := social.NewNewsClient(config.Providers.MetricsBaseURL, config.Providers.MetricsAPIKey)

	// AI密钥存在时使用LLM情绪策略，否则使用确定性启发式
	var strategy analysis.SentimentStrategy
	if config.AIConfig.APIKey != "" {
		switch config.AIConfig.ModelType {
		case "deepseek":
			strategy = llm.NewDeepSeekStrategy(config.AIConfig.APIKey, config.AIConfig.Model)
		default:
			strategy = llm.NewStrategy(config.AIConfig.APIKey, config.AIConfig.Model)
		}
		log.Debug("init llm sentiment strategy",
			"type", config.AIConfig.ModelType, "model", config.AIConfig.Model)
	}

	aggregator := analysis.NewAggregator(strategy, socialProvider, newsProvider, log)

	forecaster := analysis.NewForecaster()
	if config.Forecast.BaseConfidence > 0 {
		forecaster.BaseConfidence = config.Forecast.BaseConfidence
	}
	if config.Forecast.HistoryPoints > 0 {
		forecaster.HistoryPoints = config.Forecast.HistoryPoints
	}
	if config.Forecast.SlopeWindow > 0 {
		forecaster.SlopeWindow = config.Forecast.SlopeWindow
	}
	if config.Forecast.MaxTrend > 0 {
		forecaster.MaxTrend = config.Forecast.MaxTrend
	}

	engine := analysis.NewEngine(
		seriesCache,
		forecaster,
		aggregator,
		analysis.NewRiskEngine(),
		log,
	)

	log.Debug("init engine")

	server := api.NewServer(api.ServerConfig{
		Addr:         config.Server.Addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, api.NewHandlers(engine, storager, log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "addr", config.Server.Addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}

	log.Info("server stopped")
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn("invalid duration in config, using default", "value", s, "err", err)
		return 0
	}
	return d
}
