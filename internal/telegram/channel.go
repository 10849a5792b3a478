// Package telegram is the dialogue driver: a Telegram Bot API channel using
// long polling over plain HTTP. Inbound text goes to the engine per chat,
// outbound prompts come back through Send. Updates for one chat are handled
// strictly in arrival order; different chats proceed concurrently.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultAPIURL = "https://api.telegram.org/bot"

// Handler is the engine-facing side of the channel.
type Handler interface {
	HandleMessage(ctx context.Context, sessionID, text string)
	HandleCancel(ctx context.Context, sessionID string)
}

type Channel struct {
	token   string
	handler Handler
	client  *http.Client
	logger  *slog.Logger
	apiURL  string

	offset      int64
	pollTimeout int // getUpdates long-poll seconds

	mu     sync.Mutex
	queues map[int64]chan tgMessage

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewChannel(token string, logger *slog.Logger) *Channel {
	return &Channel{
		token:       token,
		client:      &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
		apiURL:      defaultAPIURL + token,
		pollTimeout: 30,
		queues:      make(map[int64]chan tgMessage),
	}
}

// SetHandler attaches the engine. Must be called before Start; the channel
// is the engine's Sender, so the two are wired in this order.
func (c *Channel) SetHandler(h Handler) { c.handler = h }

// SetTestTransport points the channel at a local test server.
func (c *Channel) SetTestTransport(baseURL string) {
	c.apiURL = baseURL
	c.pollTimeout = 0
}

type tgUpdate struct {
	UpdateID int64      `json:"update_id"`
	Message  *tgMessage `json:"message"`
}

type tgMessage struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		FirstName string `json:"first_name"`
	} `json:"from"`
}

type tgUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Start verifies the token and begins the polling loop.
func (c *Channel) Start(ctx context.Context) error {
	if c.token == "" {
		return fmt.Errorf("telegram: bot token is required")
	}
	if c.handler == nil {
		return fmt.Errorf("telegram: handler not set")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	var me tgUser
	raw, err := c.apiCall("getMe", nil)
	if err != nil {
		return fmt.Errorf("telegram: verify token: %w", err)
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		return fmt.Errorf("telegram: parse getMe: %w", err)
	}
	c.logger.Info("telegram connected", "bot", me.Username, "id", me.ID)

	c.done = make(chan struct{})
	go c.pollLoop()
	return nil
}

// Stop halts polling. In-flight turns finish on their own goroutines.
func (c *Channel) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		<-c.done
	}
}

// Send delivers a text message to a session's chat. Implements the engine's
// Sender.
func (c *Channel) Send(ctx context.Context, sessionID, text string) error {
	chatID, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", sessionID, err)
	}
	_, err = c.apiCall("sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

func (c *Channel) pollLoop() {
	defer close(c.done)
	c.logger.Info("telegram polling started")
	backoff := time.Second

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("telegram polling stopped")
			return
		default:
		}

		updates, err := c.getUpdates()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Warn("getUpdates failed", "error", err, "backoff", backoff)
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, u := range updates {
			if u.UpdateID >= c.offset {
				c.offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			c.dispatch(*u.Message)
		}
	}
}

// dispatch enqueues a message on its chat's serial queue, starting the
// chat's worker on first use. Per-chat ordering is what preserves the
// engine's message-N-before-N+1 guarantee.
func (c *Channel) dispatch(msg tgMessage) {
	c.mu.Lock()
	q, ok := c.queues[msg.Chat.ID]
	if !ok {
		q = make(chan tgMessage, 64)
		c.queues[msg.Chat.ID] = q
		go c.chatWorker(q)
	}
	c.mu.Unlock()

	select {
	case q <- msg:
	default:
		c.logger.Warn("chat queue full, dropping message", "chat_id", msg.Chat.ID)
	}
}

func (c *Channel) chatWorker(q chan tgMessage) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-q:
			c.handle(msg)
		}
	}
}

func (c *Channel) handle(msg tgMessage) {
	sessionID := strconv.FormatInt(msg.Chat.ID, 10)
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/cancel":
		c.handler.HandleCancel(c.ctx, sessionID)
	case text == "/start":
		greeting := "Hi! Tell me about someone you met and I'll log it — who, when, and how to reach them. Send /cancel to discard an entry in progress."
		if msg.From.FirstName != "" {
			greeting = fmt.Sprintf("Hi %s! ", msg.From.FirstName) + greeting[4:]
		}
		if err := c.Send(c.ctx, sessionID, greeting); err != nil {
			c.logger.Error("greeting failed", "chat_id", msg.Chat.ID, "error", err)
		}
	case strings.HasPrefix(text, "/"):
		// Unknown command; ignore rather than treating it as content.
	default:
		c.handler.HandleMessage(c.ctx, sessionID, text)
	}
}

func (c *Channel) getUpdates() ([]tgUpdate, error) {
	raw, err := c.apiCall("getUpdates", map[string]any{
		"offset":          c.offset,
		"limit":           100,
		"timeout":         c.pollTimeout,
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, err
	}
	var updates []tgUpdate
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

func (c *Channel) apiCall(method string, payload map[string]any) (json.RawMessage, error) {
	url := c.apiURL + "/" + method

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", method, err)
		}
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("%s: %s", method, result.Description)
	}
	return result.Result, nil
}
