package intake

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/iamdashante1/mb/models"
)

const (
	attachmentsField = "attachments"
	multipartMemory  = 32 << 20
)

var ErrBodyTooLarge = errors.New("request body too large")

// Record is a submission's fields after normalization, independent of the
// transport it arrived on.
type Record struct {
	Name         string
	Email        string
	Relationship string
	Message      string
	Attachments  []models.Attachment
}

func (r Record) HasAttachments() bool {
	return len(r.Attachments) > 0
}

// Body is the parsed request: either a JSONBody or a MultipartBody.
type Body interface {
	Record() Record
	Transport() string
}

// JSONBody never carries attachments.
type JSONBody struct {
	Fields Record
}

func (b JSONBody) Record() Record    { return b.Fields }
func (b JSONBody) Transport() string { return "json" }

type MultipartBody struct {
	Fields  Record
	Dropped []DroppedFile
}

func (b MultipartBody) Record() Record    { return b.Fields }
func (b MultipartBody) Transport() string { return "multipart" }

// DroppedFile is an uploaded file left out of the attachment list.
type DroppedFile struct {
	Name   string
	Type   string
	Reason Rejection
}

type jsonFields struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
}

// Parse reads the whole request body. Multipart form data is selected by the
// Content-Type header; everything else is decoded as JSON.
func Parse(r *http.Request) (Body, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		return parseMultipart(r)
	}

	return parseJSON(r)
}

func parseJSON(r *http.Request) (Body, error) {
	var f jsonFields

	if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		if isTooLarge(err) {
			return nil, ErrBodyTooLarge
		}
		return nil, &ValidationError{Message: "Invalid request body."}
	}

	return JSONBody{Fields: Record{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Relationship: strings.TrimSpace(f.Relationship),
		Message:      strings.TrimSpace(f.Message),
		Attachments:  []models.Attachment{},
	}}, nil
}

func parseMultipart(r *http.Request) (Body, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return nil, ErrBodyTooLarge
		}
		return nil, &ValidationError{Message: "Invalid form data."}
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	body := MultipartBody{Fields: Record{
		Name:         value("name"),
		Email:        value("email"),
		Relationship: value("relationship"),
		Message:      value("message"),
		Attachments:  []models.Attachment{},
	}}

	for _, fh := range form.File[attachmentsField] {
		att, rej := encodeFileHeader(fh)
		if rej != Accepted {
			body.Dropped = append(body.Dropped, DroppedFile{
				Name:   fh.Filename,
				Type:   fh.Header.Get("Content-Type"),
				Reason: rej,
			})

			continue
		}

		body.Fields.Attachments = append(body.Fields.Attachments, att)
	}

	return body, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge)
}
