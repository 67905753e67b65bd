package channel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// TelegramConfig holds Telegram channel configuration.
type TelegramConfig struct {
	Token      string  // Bot token from BotFather
	AllowedIDs []int64 // Allowed user/chat IDs (empty = allow all)
}

// telegramSender is the subset of *tgbotapi.BotAPI used to deliver messages.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel implements the Channel interface for Telegram. Each chat
// that writes to the bot becomes a bridge connection.
type TelegramChannel struct {
	token      string
	allowedIDs map[int64]bool // Allowed user/chat IDs (nil = allow all)
	hub        Hub

	bot    *tgbotapi.BotAPI
	sender telegramSender
	done   chan struct{}
	wg     sync.WaitGroup

	mu    sync.Mutex
	chats map[int64]*telegramConn
}

// telegramConn adapts one Telegram chat to bridge.Conn.
type telegramConn struct {
	chatID int64
	sender telegramSender
}

// NewTelegramChannel creates a new Telegram channel.
func NewTelegramChannel(hub Hub, cfg TelegramConfig) *TelegramChannel {
	allowedIDs := make(map[int64]bool)
	for _, id := range cfg.AllowedIDs {
		allowedIDs[id] = true
	}

	return &TelegramChannel{
		token:      strings.TrimSpace(cfg.Token),
		allowedIDs: allowedIDs,
		hub:        hub,
		done:       make(chan struct{}),
		chats:      make(map[int64]*telegramConn),
	}
}

// Name returns the channel name.
func (t *TelegramChannel) Name() string {
	return "telegram"
}

// Start connects the bot and begins long polling for updates.
func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.token == "" {
		return fmt.Errorf("telegram token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram connection failed: %w", err)
	}
	t.bot = bot
	t.sender = bot
	logger.Info("telegram channel started", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = runtimecfg.TelegramUpdateTimeoutSeconds
	updates := bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go t.pollUpdates(ctx, updates)

	return nil
}

// Stop stops polling and disconnects every chat.
func (t *TelegramChannel) Stop() error {
	select {
	case <-t.done:
		return nil
	default:
		close(t.done)
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	t.wg.Wait()

	t.mu.Lock()
	ids := make([]string, 0, len(t.chats))
	for _, c := range t.chats {
		ids = append(ids, c.ID())
	}
	t.chats = make(map[int64]*telegramConn)
	t.mu.Unlock()

	for _, id := range ids {
		t.hub.Registry().Unregister(id)
	}
	logger.Info("telegram channel stopped")
	return nil
}

func (t *TelegramChannel) pollUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.processUpdate(update)
		}
	}
}

// processUpdate routes the text of an allowed message and registers its
// chat as a connection on first contact.
func (t *TelegramChannel) processUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	chatID := msg.Chat.ID
	fromID := int64(0)
	username := ""
	if msg.From != nil {
		fromID = msg.From.ID
		username = msg.From.UserName
	}

	if len(t.allowedIDs) > 0 {
		if !t.allowedIDs[chatID] && !t.allowedIDs[fromID] {
			logger.Warn("telegram message from unauthorized user",
				"userID", fromID,
				"chatID", chatID,
				"username", username,
			)
			return
		}
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}
	if text == "" {
		return
	}

	t.ensureChat(chatID)
	t.hub.Route(text)
}

func (t *TelegramChannel) ensureChat(chatID int64) {
	t.mu.Lock()
	if _, ok := t.chats[chatID]; ok {
		t.mu.Unlock()
		return
	}
	conn := &telegramConn{chatID: chatID, sender: t.sender}
	t.chats[chatID] = conn
	t.mu.Unlock()

	t.hub.Registry().Register(conn)
}

func (c *telegramConn) ID() string { return "telegram:" + strconv.FormatInt(c.chatID, 10) }

// Send renders the envelope as "[sender] text" and delivers it in chunks
// that fit Telegram's message limit.
func (c *telegramConn) Send(ctx context.Context, payload []byte) error {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return err
	}
	for _, chunk := range SplitMessage(RenderEnvelope(env), runtimecfg.TelegramMaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.sender.Send(tgbotapi.NewMessage(c.chatID, chunk)); err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
	}
	return nil
}
