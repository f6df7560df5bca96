package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

const (
	defaultAPIBase  = "https://api.line.me"
	liffURLTemplate = "https://liff.line.me/%s"
	maxPushMessages = 5
)

// LINE talks to the LINE platform: profile lookups with the visitor's LIFF
// access token and push messages with the channel access token.
type LINE struct {
	LiffID             string
	ChannelAccessToken string
	APIBase            string
	HTTPClient         *http.Client
}

// NewLINE returns Absent when liffID is empty.
func NewLINE(liffID, channelAccessToken string, timeout time.Duration) Provider {
	if liffID == "" {
		return Absent{}
	}
	return &LINE{
		LiffID:             liffID,
		ChannelAccessToken: channelAccessToken,
		APIBase:            defaultAPIBase,
		HTTPClient:         &http.Client{Timeout: timeout},
	}
}

func (l *LINE) Available() bool { return true }

func (l *LINE) LoginURL() string {
	return fmt.Sprintf(liffURLTemplate, l.LiffID)
}

// Profile looks the visitor up with their LIFF access token. This is a LINE
// Login endpoint, which the messaging SDK does not wrap.
func (l *LINE) Profile(ctx context.Context, accessToken string) (Profile, error) {
	if accessToken == "" {
		return Profile{}, fmt.Errorf("profile: %w: no access token", ErrUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.APIBase+"/v2/profile", nil)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var profile Profile
	if err := l.do(req, &profile); err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	if profile.UserID == "" {
		return Profile{}, fmt.Errorf("profile: empty user id")
	}
	return profile, nil
}

// SendMessages pushes up to five text messages to userID with the channel
// access token.
func (l *LINE) SendMessages(ctx context.Context, userID string, texts ...string) error {
	if l.ChannelAccessToken == "" || userID == "" {
		return fmt.Errorf("push: %w", ErrUnavailable)
	}
	if len(texts) == 0 {
		return nil
	}
	if len(texts) > maxPushMessages {
		return fmt.Errorf("push: at most %d messages per call, got %d", maxPushMessages, len(texts))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	bot, err := messaging_api.NewMessagingApiAPI(l.ChannelAccessToken,
		messaging_api.WithEndpoint(l.APIBase),
		messaging_api.WithHTTPClient(l.client()),
	)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, t := range texts {
		messages = append(messages, messaging_api.TextMessage{Text: t})
	}
	if _, err := bot.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{To: userID, Messages: messages}, ""); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

func (l *LINE) client() *http.Client {
	if l.HTTPClient == nil {
		return http.DefaultClient
	}
	return l.HTTPClient
}

func (l *LINE) do(req *http.Request, out any) error {
	resp, err := l.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line api %s: status %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
