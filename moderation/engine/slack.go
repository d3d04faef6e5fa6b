package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arbiter-social/arbiter/moderation/modstore"
)

// a hung webhook must not wedge callers indefinitely
var slackClient = &http.Client{Timeout: 10 * time.Second}

type SlackNotifier struct {
	SlackWebhookURL string
}

func (n *SlackNotifier) SendEscalation(ctx context.Context, item *modstore.QueueItem) error {
	msg := slackBody("⚠️ Escalated Moderation Item ⚠️\n", item)
	return n.sendSlackMsg(ctx, msg)
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	resp, err := slackClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func slackBody(header string, item *modstore.QueueItem) string {
	msg := header
	msg += fmt.Sprintf("queue `#%d` / content `%s` / author `%s`\n", item.ID, item.ContentID, item.UserID)
	msg += fmt.Sprintf("Severity: `%s` (confidence %.2f)\n", item.Severity, item.Confidence)
	if len(item.Tags) > 0 {
		msg += fmt.Sprintf("Tags: `%s`\n", strings.Join(item.Tags, ", "))
	}
	if item.FlagReason != "" {
		msg += fmt.Sprintf("Reason: %s\n", item.FlagReason)
	}
	return msg
}
