package intake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/iamdashante1/mb/models"
)

// MaxAttachmentSize is the largest file kept as an attachment.
const MaxAttachmentSize = 15 * 1024 * 1024

const fallbackAttachmentName = "attachment"

// Rejection explains why a file was left out of a submission. It is a
// policy decision, not an error.
type Rejection string

const (
	Accepted     Rejection = ""
	RejectType   Rejection = "type"
	RejectSize   Rejection = "size"
	RejectUnread Rejection = "unreadable"
)

// bareMediaType lower-cases a Content-Type value and strips its parameters.
// Unparseable values yield "".
func bareMediaType(contentType string) string {
	t, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return ""
	}
	return t
}

func allowedType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}

// EncodeAttachment inlines an image or video file as a data URL.
func EncodeAttachment(name, contentType string, data []byte) (models.Attachment, Rejection) {
	mediaType := bareMediaType(contentType)
	if !allowedType(mediaType) {
		return models.Attachment{}, RejectType
	}

	if len(data) > MaxAttachmentSize {
		return models.Attachment{}, RejectSize
	}

	if name == "" {
		name = fallbackAttachmentName
	}

	return models.Attachment{
		URL:  fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)),
		Type: mediaType,
		Name: name,
		Size: int64(len(data)),
	}, Accepted
}

// encodeFileHeader screens an uploaded part by its declared type and size
// before reading it, so oversized files never get loaded into memory.
func encodeFileHeader(fh *multipart.FileHeader) (models.Attachment, Rejection) {
	mediaType := bareMediaType(fh.Header.Get("Content-Type"))

	if !allowedType(mediaType) {
		return models.Attachment{}, RejectType
	}

	if fh.Size > MaxAttachmentSize {
		return models.Attachment{}, RejectSize
	}

	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, RejectUnread
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxAttachmentSize+1))
	if err != nil {
		return models.Attachment{}, RejectUnread
	}

	return EncodeAttachment(fh.Filename, mediaType, data)
}
