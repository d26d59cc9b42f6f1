// Package youtube translates the video-metadata REST response into a single
// chat sentence, mirroring the lastfm adapter's asynchronous shape.
package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
)

const defaultBaseURL = "https://www.googleapis.com"

var (
	errMissingEmitter = errors.New("youtube: emitter is required")
	errMissingMoods   = errors.New("youtube: mood table is required")

	errNoItems = errors.New("youtube: response contains no items")
)

// ClientConfig describes the adapter's dependencies.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Emitter    chat.Emitter
	Moods      *mood.Table
	Logger     *zap.Logger
}

// Client is the video-metadata lookup adapter.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	emitter    chat.Emitter
	moods      *mood.Table
	logger     *zap.Logger
}

// NewClient validates the configuration and constructs the adapter.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Emitter == nil {
		return nil, errMissingEmitter
	}
	if cfg.Moods == nil {
		return nil, errMissingMoods
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		emitter:    cfg.Emitter,
		moods:      cfg.Moods,
		logger:     logger,
	}, nil
}

// VideoSummary looks up the video's title and statistics and eventually
// emits one sentence into the captured context.
func (c *Client) VideoSummary(ctx chat.Context, videoID string) {
	go c.lookupAndDeliver(ctx, videoID)
}

func (c *Client) lookupAndDeliver(ctx chat.Context, videoID string) {
	requestID := uuid.NewString()
	c.logger.Debug("youtube lookup started",
		zap.String("request_id", requestID),
		zap.String("video_id", videoID))

	sentence, err := c.fetchSummary(videoID)
	if err != nil {
		c.logger.Warn("youtube lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		sentence = c.failureSentence()
	}
	chat.Speak(c.emitter, ctx, sentence)
}

func (c *Client) requestURL(videoID string) string {
	query := url.Values{}
	query.Set("id", videoID)
	query.Set("key", c.apiKey)
	query.Set("part", "snippet,statistics")
	query.Set("fields", "items(snippet(title),statistics)")
	return c.baseURL + "/youtube/v3/videos?" + query.Encode()
}

// Wire shapes for the video list response.

type videoListPayload struct {
	Items []videoItemPayload `json:"items"`
}

type videoItemPayload struct {
	Snippet    videoSnippetPayload `json:"snippet"`
	Statistics videoStatsPayload   `json:"statistics"`
}

type videoSnippetPayload struct {
	Title string `json:"title"`
}

type videoStatsPayload struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	DislikeCount string `json:"dislikeCount"`
}

func (c *Client) fetchSummary(videoID string) (string, error) {
	response, err := c.httpClient.Get(c.requestURL(videoID))
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube: unexpected HTTP status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	var payload videoListPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 {
		return "", errNoItems
	}

	item := payload.Items[0]
	return fmt.Sprintf("YouTube video: '%s' - %s views, %s likes, %s dislikes",
		item.Snippet.Title,
		item.Statistics.ViewCount,
		item.Statistics.LikeCount,
		item.Statistics.DislikeCount), nil
}

func (c *Client) failureSentence() string {
	template := c.moods.Resolve(mood.VerbPanic, mood.DispositionNeutral)
	return template.Text + " I can't figure out what that is!"
}
