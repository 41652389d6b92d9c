package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/engine"
	"github.com/faridmamadou/anipHair/internal/service/ports"
)

// Telegram voice notes are capped well below this; guard the download
// anyway.
const maxVoiceBytes = 20 << 20

type BotController struct {
	bot         *bot.Bot
	engine      *engine.Engine
	messenger   ports.Messenger
	adminChatID int64
	logger      *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	eng *engine.Engine,
	messenger ports.Messenger,
	adminChatID int64,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:         botInstance,
		engine:      eng,
		messenger:   messenger,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// RegisterHandlers wires every text message and voice note into the
// engine. There are no per-command bot handlers: classification belongs
// to the engine.
func (c *BotController) RegisterHandlers() {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handleText)
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil && update.Message.Voice != nil
	}, c.handleVoice)
}

// Start runs the long-polling loop until ctx is canceled.
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}

func (c *BotController) handleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	if !c.authorized(chatID) {
		return
	}

	reply, err := c.engine.Handle(ctx, chatID, update.Message.Text)
	if err != nil {
		// Store-layer failure: no meaningful reply can be composed.
		c.logger.Error("Message handling failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	c.send(ctx, chatID, reply)
}

func (c *BotController) handleVoice(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	if !c.authorized(chatID) {
		return
	}

	audio, filename, err := c.downloadVoice(ctx, update.Message.Voice.FileID)
	if err != nil {
		c.logger.Error("Voice download failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		c.send(ctx, chatID, "Désolé, je n'ai pas pu récupérer ce message vocal.")
		return
	}

	reply, err := c.engine.HandleAudio(ctx, chatID, audio, filename)
	if err != nil {
		c.logger.Error("Voice handling failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}

	c.send(ctx, chatID, reply)
}

func (c *BotController) downloadVoice(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := c.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bot.FileDownloadLink(file), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download voice file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download voice file: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read voice file: %w", err)
	}

	return audio, path.Base(file.FilePath), nil
}

// authorized gates on the configured operator chat; with no admin chat
// configured the bot answers everyone.
func (c *BotController) authorized(chatID int64) bool {
	if c.adminChatID != 0 && chatID != c.adminChatID {
		c.logger.Info("Ignoring unauthorized sender", zap.Int64("chat_id", chatID))
		return false
	}
	return true
}

func (c *BotController) send(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if err := c.messenger.Send(ctx, chatID, text); err != nil {
		// Outbound failures are logged and swallowed unconditionally.
		c.logger.Error("Failed to send reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
