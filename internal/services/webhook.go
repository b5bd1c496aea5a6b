package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed = 16711680 // #FF0000 - Critical alert

	WebhookUsername = "InCloud Alerts"
)

// SendCriticalAlertNotification escalates a freshly generated critical alert
// to the branch's configured chat webhooks.
func SendCriticalAlertNotification(branch models.Branch, notification models.Notification) error {
	if branch.DiscordWebhook != "" {
		if err := sendDiscordCriticalAlert(branch.DiscordWebhook, branch, notification); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if branch.SlackWebhook != "" {
		if err := sendSlackCriticalAlert(branch.SlackWebhook, branch, notification); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func sendDiscordCriticalAlert(webhookURL string, branch models.Branch, notification models.Notification) error {
	payload := DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **CRITICAL INVENTORY ALERT**",
				Description: notification.Message,
				Color:       ColorRed,
				Fields: []DiscordWebhookField{
					{Name: "🏬 Branch", Value: branch.Name, Inline: true},
					{Name: "🏷️ Alert Type", Value: notification.Type, Inline: true},
					{Name: "⚠️ Severity", Value: "**" + notification.Severity + "**", Inline: true},
					{Name: "📝 Title", Value: notification.Title, Inline: false},
				},
				Timestamp: notification.CreatedAt.Format(time.RFC3339),
			},
		},
	}

	return sendWebhook(webhookURL, payload)
}

func sendSlackCriticalAlert(webhookURL string, branch models.Branch, notification models.Notification) error {
	payload := SlackWebhookRequest{
		Username: WebhookUsername,
		Text:     ":rotating_light: Critical inventory alert",
		Attachments: []SlackAttachment{
			{
				Color: "#FF0000",
				Title: notification.Title,
				Text:  notification.Message,
				Fields: []SlackField{
					{Title: "Branch", Value: branch.Name, Short: true},
					{Title: "Alert Type", Value: notification.Type, Short: true},
					{Title: "Severity", Value: notification.Severity, Short: true},
				},
				Footer:    WebhookUsername,
				Timestamp: notification.CreatedAt.Unix(),
			},
		},
	}

	return sendWebhook(webhookURL, payload)
}

func sendWebhook(webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
