// Package lastfm translates the Last.fm recent-tracks REST response into a
// single chat sentence. Lookups run asynchronously: the caller returns
// immediately and the formatted sentence re-enters the emitter when the
// response arrives. No retry and no timeout policy beyond the HTTP
// client's own; a failure is reported once.
package lastfm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lindenhall/squire/internal/chat"
	"github.com/lindenhall/squire/internal/mood"
	"github.com/lindenhall/squire/internal/timetext"
)

const defaultBaseURL = "http://ws.audioscrobbler.com"

const (
	unknownArtist = "(Unknown Artist)"
	unknownTrack  = "(Unknown Track)"
)

var (
	errMissingEmitter = errors.New("lastfm: emitter is required")
	errMissingMoods   = errors.New("lastfm: mood table is required")

	errBadStatus = errors.New("lastfm: response status not ok")
	errBadStamp  = errors.New("lastfm: track timestamp unreadable")
)

// ClientConfig describes the adapter's dependencies.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// HTTPClient issues the outbound GET. Nil selects http.DefaultClient.
	HTTPClient *http.Client
	Emitter    chat.Emitter
	Moods      *mood.Table
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Client is the recent-activity lookup adapter.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	emitter    chat.Emitter
	moods      *mood.Table
	clock      func() time.Time
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
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
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
		clock:      clock,
		logger:     logger,
	}, nil
}

// RecentTrack looks up the registered username's latest activity and
// eventually emits one sentence into the captured context. The context is
// a value snapshot, so later events cannot reroute the reply.
func (c *Client) RecentTrack(ctx chat.Context, ircNick, username string) {
	go c.lookupAndDeliver(ctx, ircNick, username)
}

func (c *Client) lookupAndDeliver(ctx chat.Context, ircNick, username string) {
	requestID := uuid.NewString()
	c.logger.Debug("lastfm lookup started",
		zap.String("request_id", requestID),
		zap.String("nick", ircNick),
		zap.String("username", username))

	sentence, err := c.fetchSummary(ircNick, username)
	if err != nil {
		c.logger.Warn("lastfm lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		sentence = c.failureSentence(ircNick)
	}
	chat.Speak(c.emitter, ctx, sentence)
}

func (c *Client) requestURL(username string) string {
	query := url.Values{}
	query.Set("method", "user.getrecenttracks")
	query.Set("user", username)
	query.Set("api_key", c.apiKey)
	query.Set("limit", "1")
	return c.baseURL + "/2.0/?" + query.Encode()
}

func (c *Client) fetchSummary(ircNick, username string) (string, error) {
	response, err := c.httpClient.Get(c.requestURL(username))
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lastfm: unexpected HTTP status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	return c.formatResponse(body, ircNick)
}

// Wire shapes for the tag-based recent-tracks response.

type recentTracksEnvelope struct {
	XMLName xml.Name         `xml:"lfm"`
	Status  string           `xml:"status,attr"`
	Tracks  recentTracksList `xml:"recenttracks"`
}

type recentTracksList struct {
	Tracks []recentTrack `xml:"track"`
}

type recentTrack struct {
	Artist     string          `xml:"artist"`
	Name       string          `xml:"name"`
	NowPlaying string          `xml:"nowplaying,attr"`
	Date       recentTrackDate `xml:"date"`
}

type recentTrackDate struct {
	UTS string `xml:"uts,attr"`
}

func (c *Client) formatResponse(body []byte, ircNick string) (string, error) {
	var envelope recentTracksEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return "", err
	}
	if envelope.Status != "ok" {
		return "", errBadStatus
	}

	if len(envelope.Tracks.Tracks) == 0 {
		return ircNick + " has not listened to anything.", nil
	}

	top := envelope.Tracks.Tracks[0]
	artist := top.Artist
	if artist == "" {
		artist = unknownArtist
	}
	name := top.Name
	if name == "" {
		name = unknownTrack
	}

	if top.NowPlaying == "true" {
		return fmt.Sprintf("%s is currently listening to %s - %s", ircNick, artist, name), nil
	}

	stamp, err := strconv.ParseInt(top.Date.UTS, 10, 64)
	if err != nil {
		return "", errBadStamp
	}
	elapsed := timetext.Describe(time.Unix(stamp, 0), c.clock())
	return fmt.Sprintf("%s listened to %s - %s %s", ircNick, artist, name, elapsed), nil
}

// failureSentence is the one-shot report for any transport failure or
// malformed response.
func (c *Client) failureSentence(ircNick string) string {
	template := c.moods.Resolve(mood.VerbPanic, mood.DispositionNeutral)
	return template.Text + " I can't figure out what " + ircNick + " is listening to!"
}
