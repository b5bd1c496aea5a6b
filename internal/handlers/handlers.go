package handlers

import (
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/services"
)

// Package-level collaborators, wired once at startup.
var (
	alertGenerator    *services.AlertGenerator
	notificationStore *services.NotificationStore
	notificationFeed  changefeed.Feed
)

func Initialize(generator *services.AlertGenerator, store *services.NotificationStore, feed changefeed.Feed) {
	alertGenerator = generator
	notificationStore = store
	notificationFeed = feed
}
