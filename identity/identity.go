// Package identity wraps the optional messaging-platform account of the
// visitor. When the platform is not configured, or the page is opened
// outside the chat app, the Absent provider is used and ordering continues
// with phone-number identification only.
package identity

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by providers that cannot serve a call.
var ErrUnavailable = errors.New("identity: integration unavailable")

// Profile is the visitor's platform account.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// Provider is the identity integration boundary.
type Provider interface {
	// Available is false when no integration is configured.
	Available() bool
	// LoginURL is where a visitor inside the chat app is sent to log in.
	LoginURL() string
	// Profile resolves the visitor's access token to an account.
	Profile(ctx context.Context, accessToken string) (Profile, error)
	// SendMessages pushes text messages into the visitor's chat.
	SendMessages(ctx context.Context, userID string, texts ...string) error
}

// Absent is the provider used when no integration is configured.
type Absent struct{}

func (Absent) Available() bool  { return false }
func (Absent) LoginURL() string { return "" }

func (Absent) Profile(context.Context, string) (Profile, error) {
	return Profile{}, ErrUnavailable
}

func (Absent) SendMessages(context.Context, string, ...string) error {
	return ErrUnavailable
}
