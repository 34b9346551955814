package services

import (
	"context"

	"github.com/desertthunder/mysubs/internal/models"
)

// TokenProvider supplies bearer credentials. [auth.Manager] is the production implementation.
type TokenProvider interface {
	// Current returns the live credential or nil.
	Current() *models.Credential

	// Refresh mints a new credential from the stored refresh token.
	Refresh(ctx context.Context) (*models.Credential, error)
}

// SubscriptionsClient reads the signed-in user's subscriptions and channels.
type SubscriptionsClient interface {
	// ListSubscriptions returns one page of subscriptions in alphabetical order.
	// An empty cursor requests the first page.
	ListSubscriptions(ctx context.Context, pageCursor string) (*models.SubscriptionPage, error)

	// Account returns the signed-in user's own channel.
	Account(ctx context.Context) (*models.Account, error)

	// Channel returns a channel with its statistics.
	Channel(ctx context.Context, channelID string) (*models.SubscriptionItem, error)
}
