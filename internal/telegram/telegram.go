package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"newsradar/internal/metrics"
)

const apiBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	token  string
	chatID string
	http   *http.Client
}

func NewClient(token, chatID string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		token:  token,
		chatID: chatID,
		http:   &http.Client{Timeout: timeout},
	}
}

// SendMessage sends one HTML message with retry and exponential backoff.
func (c *Client) SendMessage(text string) error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := c.sendMessageOnce(text)
		if err == nil {
			log.Printf("Message sent to Telegram (try %d)", attempt)
			return nil
		}

		log.Printf("Error sending to Telegram (try %d/%d): %v", attempt, maxRetries, err)

		if attempt < maxRetries {
			waitTime := time.Duration(1<<attempt) * time.Second
			time.Sleep(waitTime)
		}
	}

	return fmt.Errorf("can't send message after %d tries", maxRetries)
}

func (c *Client) sendMessageOnce(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, c.token)

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error building JSON: %w", err)
	}

	resp, err := c.http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("Warning: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}

// SendDigest sends the chunks in order with a politeness delay between them.
// One chunk failing is logged and counted but never blocks the rest. Returns
// how many chunks went through.
func (c *Client) SendDigest(chunks []string, delay time.Duration) int {
	sent := 0
	for i, chunk := range chunks {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		if err := c.SendMessage(chunk); err != nil {
			log.Printf("Digest chunk %d/%d failed: %v", i+1, len(chunks), err)
			metrics.Global.IncrementSendFailures()
			continue
		}
		sent++
		metrics.Global.IncrementChunksSent()
	}
	return sent
}
