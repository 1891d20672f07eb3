// Package llm provides an LLM-backed sentiment strategy, substitutable
// for the default heuristic without changing callers.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ethan-cdwll/insight/internal/models"
)

// recentPoints limits how much history goes into the prompt.
const recentPoints = 24

// DeepSeek exposes an OpenAI-compatible API.
const (
	deepseekBaseURL      = "https://api.deepseek.com/v1"
	deepseekDefaultModel = "deepseek-chat"
)

// Strategy implements analysis.SentimentStrategy using OpenAI.
type Strategy struct {
	client *openai.Client
	model  string
}

// NewStrategy creates an OpenAI-backed sentiment strategy.
func NewStrategy(apiKey string, model string) *Strategy {
	if model == "" {
		model = openai.GPT4 // 默认使用GPT-4
	}
	return &Strategy{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewDeepSeekStrategy creates a DeepSeek-backed sentiment strategy.
func NewDeepSeekStrategy(apiKey string, model string) *Strategy {
	if model == "" {
		model = deepseekDefaultModel
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL
	return &Strategy{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// NewStrategyWithConfig creates a strategy against a custom endpoint,
// used for OpenAI-compatible providers and tests.
func NewStrategyWithConfig(config openai.ClientConfig, model string) *Strategy {
	if model == "" {
		model = openai.GPT4
	}
	return &Strategy{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Score implements analysis.SentimentStrategy. The model's -1..1 score
// is normalized into [0,1].
func (s *Strategy) Score(ctx context.Context, tokenAddress string, series models.TokenSeries) (float64, error) {
	tail := series
	if len(tail) > recentPoints {
		tail = tail[len(tail)-recentPoints:]
	}

	var sb strings.Builder
	for _, p := range tail {
		sb.WriteString(fmt.Sprintf("时间: %s, 价格: %.8f, 成交量: %.2f\n",
			p.Timestamp.Format("2006-01-02 15:04:05"), p.Price, p.Volume))
	}

	prompt := fmt.Sprintf(`基于以下代币 %s 的近期行情数据评估市场情绪:
%s

请评估整体市场情绪，给出-1到1之间的分数：
-1表示极度负面
0表示中性
1表示极度正面

输出格式为JSON:
{
    "sentiment_score": float
}`, tokenAddress, sb.String())

	resp, err := s.createChatCompletion(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("failed to score sentiment: %w", err)
	}

	var sentiment struct {
		Score float64 `json:"sentiment_score"`
	}
	if err := json.Unmarshal([]byte(resp), &sentiment); err != nil {
		return 0, fmt.Errorf("failed to parse sentiment results: %w", err)
	}

	// [-1,1] → [0,1]
	score := (sentiment.Score + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// createChatCompletion is a helper function to make OpenAI API calls
func (s *Strategy) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "你是一个专业的加密货币分析师，擅长市场情绪评估。请始终以JSON格式返回分析结果。",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3, // 使用较低的temperature以获得更稳定的输出
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
