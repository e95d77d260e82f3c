package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const maxEvidenceBytes = 10 << 20

var errFileTooLarge = errors.New("file too large")

func currentActor(c fiber.Ctx) (user.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return user.Actor{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return actor, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func optionalUUIDQuery(c fiber.Ctx, key string) (*uuid.UUID, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &id, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}

func pageQuery(c fiber.Ctx) (int, int, error) {
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return 0, 0, err
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// evidenceFiles reads the "files" parts of a multipart body.
func evidenceFiles(c fiber.Ctx) ([]moderation.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid multipart form", nil, err)
	}

	headers := form.File["files"]
	out := make([]moderation.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			if errors.Is(err, errFileTooLarge) {
				return nil, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large: "+fh.Filename, nil, err)
			}
			return nil, middleware.NewAppError(fiber.StatusBadRequest, "Unreadable file: "+fh.Filename, nil, err)
		}
		out = append(out, moderation.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Data:        data,
		})
	}
	return out, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxEvidenceBytes {
		return nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxEvidenceBytes))
}
