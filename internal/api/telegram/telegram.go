// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram is a small client for the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.geekbrox.name/autoblog/internal/ctxutil"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/request"
	"go.geekbrox.name/autoblog/internal/textutil"
)

const (
	// DefaultURL is the Bot API endpoint.
	DefaultURL = "https://api.telegram.org"
	// MaxMessageLen is the maximum length of a message text in runes.
	MaxMessageLen = 4096

	sendRetryLimit = 5 // N attempts to retry message sending
)

// ParseMode values.
const (
	Markdown = "Markdown"
	Plain    = ""
)

// Config configures a Client.
type Config struct {
	Token string
	// ChatID is the default chat used by Notify.
	ChatID     string
	URL        string
	HTTPClient *http.Client
	Logf       logger.Logf
}

// Client talks to the Bot API.
type Client struct {
	token    string
	chatID   string
	url      string
	httpc    *http.Client
	pollc    *http.Client
	logf     logger.Logf
	scrubber *strings.Replacer
	sleep    func(context.Context, time.Duration) bool
}

// New returns a new Client.
func New(cfg Config) *Client {
	c := &Client{
		token:  strings.TrimSpace(cfg.Token),
		chatID: strings.TrimSpace(cfg.ChatID),
		url:    cfg.URL,
		httpc:  cfg.HTTPClient,
		logf:   cfg.Logf,
		sleep:  ctxutil.Sleep,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.httpc == nil {
		c.httpc = request.DefaultClient
		// Long polls outlive the default client timeout; they are bounded by
		// their context instead.
		c.pollc = &http.Client{}
	} else {
		c.pollc = c.httpc
	}
	if c.logf == nil {
		c.logf = func(string, ...any) {}
	}
	if c.token != "" {
		c.scrubber = strings.NewReplacer(c.token, "[EXPUNGED]")
	}
	return c
}

// Configured reports whether both the token and the default chat are set.
func (c *Client) Configured() bool { return c.token != "" && c.chatID != "" }

// ChatID returns the default chat.
func (c *Client) ChatID() string { return c.chatID }

// Button is an inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Keyboard is an inline keyboard, a list of button rows.
type Keyboard [][]Button

// Row is a convenience for building a keyboard row.
func Row(buttons ...Button) []Button { return buttons }

// Callback returns a callback button.
func Callback(text, data string) Button { return Button{Text: text, Data: data} }

// Chat is a Telegram chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// User is a Telegram user.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Message is a received or sent message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// Update is an incoming update.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type replyMarkup struct {
	InlineKeyboard Keyboard `json:"inline_keyboard"`
}

type sendMessageArgs struct {
	ChatID             string       `json:"chat_id"`
	MessageID          int64        `json:"message_id,omitempty"`
	Text               string       `json:"text"`
	ParseMode          string       `json:"parse_mode,omitempty"`
	ReplyMarkup        *replyMarkup `json:"reply_markup,omitempty"`
	LinkPreviewOptions struct {
		IsDisabled bool `json:"is_disabled"`
	} `json:"link_preview_options"`
}

type response[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
}

// APIError is an unsuccessful Bot API response.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.StatusCode, e.Description)
}

// Notify sends a Markdown message to the default chat. It does nothing if
// the client is not configured.
func (c *Client) Notify(ctx context.Context, text string) error {
	if !c.Configured() {
		c.logf("[TG 미설정] %s", text)
		return nil
	}
	_, err := c.send(ctx, c.chatID, text, Markdown, nil)
	return err
}

// NotifyPlain is like Notify but sends the text without any markup.
func (c *Client) NotifyPlain(ctx context.Context, text string) error {
	if !c.Configured() {
		c.logf("[TG 미설정] %s", text)
		return nil
	}
	_, err := c.send(ctx, c.chatID, text, Plain, nil)
	return err
}

// SendMessage sends a Markdown message to chatID, splitting it into
// several messages if it is too long. The keyboard, if any, is attached to
// the last one, which is returned.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, kb Keyboard) (*Message, error) {
	return c.send(ctx, chatID, text, Markdown, kb)
}

func (c *Client) send(ctx context.Context, chatID, text, parseMode string, kb Keyboard) (*Message, error) {
	chunks := splitMessage(text)
	var last *Message
	for i, chunk := range chunks {
		args := &sendMessageArgs{ChatID: chatID, Text: chunk, ParseMode: parseMode}
		args.LinkPreviewOptions.IsDisabled = true
		if i == len(chunks)-1 && len(kb) > 0 {
			args.ReplyMarkup = &replyMarkup{InlineKeyboard: kb}
		}
		msg, err := c.sendWithRetry(ctx, "sendMessage", args)
		if err != nil {
			return nil, err
		}
		last = msg
	}
	return last, nil
}

// EditMessageText replaces the text and keyboard of a sent message. Editing
// a message to identical content is not an error.
func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int64, text string, kb Keyboard) error {
	args := &sendMessageArgs{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      textutil.Truncate(strings.TrimSpace(text), MaxMessageLen),
		ParseMode: Markdown,
	}
	args.LinkPreviewOptions.IsDisabled = true
	if len(kb) > 0 {
		args.ReplyMarkup = &replyMarkup{InlineKeyboard: kb}
	}
	_, err := c.sendWithRetry(ctx, "editMessageText", args)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return nil
	}
	return err
}

// AnswerCallbackQuery acknowledges a button press, optionally showing text.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id, text string) error {
	_, err := call[bool](ctx, c, c.httpc, "answerCallbackQuery", map[string]string{
		"callback_query_id": id,
		"text":              text,
	})
	return err
}

// GetUpdates long-polls for updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()
	return call[[]Update](ctx, c, c.pollc, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout / time.Second),
		"limit":           limit,
		"allowed_updates": []string{"message", "callback_query"},
	})
}

func (c *Client) sendWithRetry(ctx context.Context, method string, args *sendMessageArgs) (*Message, error) {
	var (
		msg *Message
		err error
	)
	for range sendRetryLimit {
		msg, err = call[*Message](ctx, c, c.httpc, method, args)
		if err == nil {
			return msg, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			c.logf("telegram: %s rate limited, waiting %v", method, apiErr.RetryAfter)
			if !c.sleep(ctx, apiErr.RetryAfter) {
				return nil, ctx.Err()
			}
		case args.ParseMode != Plain && strings.Contains(apiErr.Description, "can't parse entities"):
			c.logf("telegram: %s: markup rejected, resending as plain text", method)
			args.ParseMode = Plain
		default:
			return nil, err
		}
	}
	return nil, err
}

func call[T any](ctx context.Context, c *Client, httpc *http.Client, method string, args any) (T, error) {
	var zero T
	if c.token == "" {
		return zero, errors.New("telegram: bot token is not set")
	}
	resp, err := request.Make[response[T]](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.url + "/bot" + c.token + "/" + method,
		Body:       args,
		HTTPClient: httpc,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		var statusErr *request.StatusError
		if errors.As(err, &statusErr) {
			return zero, toAPIError(method, statusErr)
		}
		return zero, err
	}
	if !resp.OK {
		return zero, &APIError{Method: method, StatusCode: http.StatusOK, Description: resp.Description}
	}
	return resp.Result, nil
}

func toAPIError(method string, statusErr *request.StatusError) error {
	var body struct {
		Description string `json:"description"`
		Parameters  struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(statusErr.Body, &body); err != nil {
		body.Description = string(statusErr.Body)
	}
	return &APIError{
		Method:      method,
		StatusCode:  statusErr.StatusCode,
		Description: body.Description,
		RetryAfter:  time.Duration(body.Parameters.RetryAfter) * time.Second,
	}
}

func splitMessage(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= MaxMessageLen {
			chunks = append(chunks, text)
			break
		}

		var (
			lastNewline    = -1
			lastWhitespace = -1
			byteCap        = len(text)
			runeCount      int
		)
		for i, r := range text {
			if runeCount == MaxMessageLen {
				byteCap = i
				break
			}
			runeCount++

			if r == '\n' {
				lastNewline = i
				continue
			}
			if unicode.IsSpace(r) {
				lastWhitespace = i
			}
		}

		splitAt := byteCap
		switch {
		case lastNewline > 0:
			splitAt = lastNewline
		case lastWhitespace > 0:
			splitAt = lastWhitespace
		}

		if chunk := strings.TrimSpace(text[:splitAt]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[splitAt:])
	}
	return chunks
}
