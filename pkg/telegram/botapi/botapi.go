package botapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const baseURL = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API sendMessage method
// without polling for updates.
type Client struct {
	client *resty.Client
	token  string
	chatID string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.client.SetBaseURL(u)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.SetTimeout(timeout)
	}
}

func New(token string, chatID int64, opts ...Option) *Client {
	c := &Client{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		token:  token,
		chatID: strconv.FormatInt(chatID, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type response struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *Client) Send(ctx context.Context, msg string) error {
	var res response
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("token", c.token).
		SetBody(sendMessageRequest{
			ChatID:    c.chatID,
			Text:      msg,
			ParseMode: "HTML",
		}).
		SetResult(&res).
		SetError(&res).
		Post("/bot{token}/sendMessage")
	if err != nil {
		// The request URL contains the bot token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("botapi: couldn't send message: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("botapi: send message failed with status %d: %d %s", resp.StatusCode(), res.ErrorCode, res.Description)
	}
	return nil
}
