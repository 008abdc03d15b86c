package upload

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Paveld-cloud/imgbb-bot/internal/model/imagehost"
	"github.com/Paveld-cloud/imgbb-bot/internal/model/upload"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/convert"
	"github.com/Paveld-cloud/imgbb-bot/internal/service/session"
)

// User-facing replies. The bot speaks Russian.
const (
	replyStart = "Привет! Отправь картинку, затем введи ID (например UZ001450). " +
		"Я загружу её в imgbb как UZ001450.png и пришлю прямую ссылку.\n\n" +
		"/cancel — отменить ожидание кода."
	replyHelp = "Как это работает:\n" +
		"1. Отправь картинку (фото или файл-изображение).\n" +
		"2. Введи ID (буквы/цифры/`_`/`-`, 2–64 символа).\n" +
		"3. Получишь прямую ссылку на картинку в imgbb.\n\n" +
		"/cancel — отменить ожидание кода."
	replyAskID             = "Картинка получена ✅. Теперь введи ID (например UZ001450)."
	replyPhotoFirst        = "Сначала отправь картинку. Потом введи ID (например UZ001450)."
	replyCancelled         = "Ожидание кода отменено."
	replyTooLarge          = "❌ Файл больше 32 МБ. Сожми изображение и попробуй снова."
	replyConvertedTooLarge = "❌ После конвертации PNG получилось больше 32 МБ. Сожми изображение и попробуй снова."
	replyBadID             = "❌ Некорректный ID. Разрешены буквы/цифры/`_`/`-` (2–64 символа)."
	replyDecodeFailed      = "❌ Не удалось конвертировать изображение в PNG: %v"
	replyUploadFailed      = "❌ Загрузка в imgbb не удалась: %v\nОтправь ID ещё раз, чтобы повторить попытку."
)

// Uploader abstracts the image host so the conversation flow can be tested
// without network access.
type Uploader interface {
	Upload(ctx context.Context, stem string, data []byte) (*imagehost.Result, error)
}

// Service drives the photo-then-identifier conversation for every user.
// Each method handles one incoming event and returns the reply to send.
type Service struct {
	store    *session.Store
	uploader Uploader
}

// NewService wires the conversation flow to its collaborators.
func NewService(store *session.Store, uploader Uploader) *Service {
	return &Service{store: store, uploader: uploader}
}

// Start returns the greeting shown for /start. No state changes.
func (s *Service) Start() string {
	return replyStart
}

// Help returns the usage summary shown for /help. No state changes.
func (s *Service) Help() string {
	return replyHelp
}

// Cancel drops any pending photo. Cancelling with nothing pending replies
// the same way, which keeps the command idempotent.
func (s *Service) Cancel(ctx context.Context, userID int64) string {
	if s.store.Clear(ctx, userID) {
		log.Printf("[upload] user %d cancelled a pending upload", userID)
	}
	return replyCancelled
}

// HandlePhoto stores the received image and asks for an identifier. A photo
// arriving while another is pending replaces it; an oversized photo is
// rejected and leaves any pending session untouched.
func (s *Service) HandlePhoto(ctx context.Context, userID int64, image []byte) string {
	if len(image) > upload.MaxImageBytes {
		return replyTooLarge
	}

	sess := s.store.Put(ctx, userID, image)
	log.Printf("[upload] user %d stored %d image bytes, session %s", userID, len(image), sess.ID)
	return replyAskID
}

// HandleText treats the text as an identifier for the pending photo and runs
// the convert-and-upload pipeline. A validation failure keeps the session so
// the user can try another identifier. An upload failure also keeps it, so a
// retry only needs the identifier again. A decode failure clears it, because
// resending the same bytes cannot succeed. Clears apply only to the session
// read at entry; a photo stored while the pipeline runs stays pending.
func (s *Service) HandleText(ctx context.Context, userID int64, text string) string {
	sess, err := s.store.Get(ctx, userID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return replyPhotoFirst
	}

	id, ok := upload.SanitizeIdentifier(text)
	if !ok {
		return replyBadID
	}

	png, format, err := convert.ToPNG(sess.Image)
	if err != nil {
		log.Printf("[upload] user %d image decode failed: %v", userID, err)
		s.store.ClearIf(ctx, userID, sess.ID)
		return fmt.Sprintf(replyDecodeFailed, err)
	}

	if len(png) > upload.MaxImageBytes {
		s.store.ClearIf(ctx, userID, sess.ID)
		return replyConvertedTooLarge
	}

	res, err := s.uploader.Upload(ctx, id, png)
	if err != nil {
		log.Printf("[upload] user %d upload %s.png failed: %v", userID, id, err)
		return fmt.Sprintf(replyUploadFailed, err)
	}

	s.store.ClearIf(ctx, userID, sess.ID)
	log.Printf("[upload] user %d uploaded %s from a %s source (%d bytes)", userID, res.Filename, format, res.Size)
	return successReply(res)
}

func successReply(res *imagehost.Result) string {
	reply := fmt.Sprintf("✅ Загружено!\nПрямая ссылка: %s\nФайл: %s", res.URL, res.Filename)
	if res.Size > 0 {
		reply += fmt.Sprintf("\nРазмер: %d байт", res.Size)
	}
	return reply
}
