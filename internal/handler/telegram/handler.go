package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/Paveld-cloud/imgbb-bot/internal/model/upload"
)

// Conversation abstracts the upload flow so the bot bindings can be tested
// without the real pipeline.
type Conversation interface {
	Start() string
	Help() string
	Cancel(ctx context.Context, userID int64) string
	HandlePhoto(ctx context.Context, userID int64, image []byte) string
	HandleText(ctx context.Context, userID int64, text string) string
}

// sender is the part of tele.Context the reply path needs.
type sender interface {
	Send(what interface{}, opts ...interface{}) error
}

// Handler binds bot updates to the conversation flow.
type Handler struct {
	bot  *tele.Bot
	conv Conversation
}

// New creates the bot handler set.
func New(bot *tele.Bot, conv Conversation) *Handler {
	return &Handler{bot: bot, conv: conv}
}

// Register attaches every handler to the bot.
func (h *Handler) Register() {
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)
	h.bot.Handle("/cancel", h.handleCancel)
	h.bot.Handle(tele.OnPhoto, h.handlePhoto)
	h.bot.Handle(tele.OnDocument, h.handleDocument)
	h.bot.Handle(tele.OnText, h.handleText)
}

func (h *Handler) handleStart(c tele.Context) error {
	return c.Send(h.conv.Start())
}

func (h *Handler) handleHelp(c tele.Context) error {
	return c.Send(h.conv.Help())
}

func (h *Handler) handleCancel(c tele.Context) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}
	return c.Send(h.conv.Cancel(context.Background(), userID))
}

// handlePhoto receives compressed photos. Telegram keeps several sizes and
// the library exposes the largest one.
func (h *Handler) handlePhoto(c tele.Context) error {
	userID, ok := senderID(c)
	if !ok || c.Message() == nil || c.Message().Photo == nil {
		return nil
	}
	return h.relayImage(c, userID, &c.Message().Photo.File)
}

// handleDocument receives uncompressed attachments and accepts only images.
// Anything else is ignored without a reply.
func (h *Handler) handleDocument(c tele.Context) error {
	userID, ok := senderID(c)
	if !ok || c.Message() == nil || c.Message().Document == nil {
		return nil
	}

	doc := c.Message().Document
	if !isImageMIME(doc.MIME) {
		return nil
	}
	return h.relayImage(c, userID, &doc.File)
}

func (h *Handler) handleText(c tele.Context) error {
	userID, ok := senderID(c)
	if !ok {
		return nil
	}
	return h.processText(c, userID, c.Text())
}

func (h *Handler) relayImage(c tele.Context, userID int64, file *tele.File) error {
	image, err := h.download(file)
	if err != nil {
		log.Printf("[bot] download file for user %d: %v", userID, err)
		return nil
	}
	return h.processImage(c, userID, image)
}

// processImage hands downloaded bytes to the conversation flow and delivers
// its reply.
func (h *Handler) processImage(dst sender, userID int64, image []byte) error {
	return dst.Send(h.conv.HandlePhoto(context.Background(), userID, image))
}

// processText forwards non-command text to the conversation flow. Unknown
// slash commands are ignored rather than treated as identifiers.
func (h *Handler) processText(dst sender, userID int64, text string) error {
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		return nil
	}
	return dst.Send(h.conv.HandleText(context.Background(), userID, text))
}

func (h *Handler) download(file *tele.File) ([]byte, error) {
	rc, err := h.bot.File(file)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", file.FileID, err)
	}
	defer rc.Close()

	// One byte past the cap is enough for the oversize check downstream.
	data, err := io.ReadAll(io.LimitReader(rc, upload.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.FileID, err)
	}
	return data, nil
}

// isImageMIME reports whether a document attachment is an image upload.
func isImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

func senderID(c tele.Context) (int64, bool) {
	from := c.Sender()
	if from == nil {
		return 0, false
	}
	return from.ID, true
}
