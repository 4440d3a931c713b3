package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/labguard/labguard-backend/dto"
)

// maxHighlights caps how many analyte names a single answer may highlight.
const maxHighlights = 4

// BotClient talks to the external narrative-answer service. The service
// receives the question together with the account's flattened rows and
// returns a free-text answer plus the analyte names it referenced.
type BotClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBotClient(baseURL string) *BotClient {
	return &BotClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatPayload struct {
	Question string       `json:"question"`
	LabRows  []dto.BotRow `json:"lab_rows"`
}

type chatReply struct {
	Answer            string   `json:"answer"`
	Timestamp         string   `json:"timestamp"`
	HighlightAnalytes []string `json:"highlight_analytes"`
}

// Chat sends the question and row context to the bot. Missing reply fields
// are filled in locally: timestamp from the clock, highlights by scanning
// the question for analyte names.
func (c *BotClient) Chat(ctx context.Context, question string, rows []dto.BotRow) (*dto.ChatResponse, error) {
	body, err := json.Marshal(chatPayload{Question: question, LabRows: rows})
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call bot service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("bot service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode bot reply: %w", err)
	}

	out := &dto.ChatResponse{
		Answer:            reply.Answer,
		Timestamp:         reply.Timestamp,
		HighlightAnalytes: reply.HighlightAnalytes,
	}
	if out.Timestamp == "" {
		out.Timestamp = time.Now().Format(time.RFC3339)
	}
	if len(out.HighlightAnalytes) == 0 {
		out.HighlightAnalytes = HighlightsFromQuestion(question, rows)
		log.Debug().
			Int("highlights", len(out.HighlightAnalytes)).
			Msg("bot reply had no highlights, derived locally")
	}

	return out, nil
}

var highlightSplitRE = regexp.MustCompile(`[ ,(/]+`)

// HighlightsFromQuestion is the local fallback when the bot names no
// analytes: the first word of each distinct analyte is matched against the
// question, case-insensitively, keeping row order.
func HighlightsFromQuestion(question string, rows []dto.BotRow) []string {
	q := strings.ToLower(question)

	seen := make(map[string]bool)
	var highlights []string
	for _, row := range rows {
		if seen[row.Analyte] {
			continue
		}
		seen[row.Analyte] = true

		parts := highlightSplitRE.Split(row.Analyte, -1)
		if len(parts) == 0 || parts[0] == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(parts[0])) {
			highlights = append(highlights, row.Analyte)
			if len(highlights) == maxHighlights {
				break
			}
		}
	}
	return highlights
}
