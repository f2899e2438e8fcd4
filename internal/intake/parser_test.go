package intake

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	field string
	name  string
	ctype string
	data  []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.ctype)

		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tributes", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestParse_JSON(t *testing.T) {
	body, err := Parse(jsonRequest(`{"name":"  Ann ","email":"a@x.com ","relationship":" Friend","extra":1}`))
	require.NoError(t, err)

	jb, ok := body.(JSONBody)
	require.True(t, ok)
	assert.Equal(t, "json", body.Transport())

	rec := jb.Record()
	assert.Equal(t, "Ann", rec.Name)
	assert.Equal(t, "a@x.com", rec.Email)
	assert.Equal(t, "Friend", rec.Relationship)
	assert.Equal(t, "", rec.Message)
	assert.NotNil(t, rec.Attachments)
	assert.Empty(t, rec.Attachments)
}

func TestParse_NoContentTypeIsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"name":"Ann"}`))

	body, err := Parse(req)
	require.NoError(t, err)
	assert.IsType(t, JSONBody{}, body)
	assert.Equal(t, "Ann", body.Record().Name)
}

func TestParse_EmptyJSONBody(t *testing.T) {
	body, err := Parse(jsonRequest(""))
	require.NoError(t, err)

	rec := body.Record()
	assert.Equal(t, "", rec.Name)
	assert.Equal(t, "", rec.Message)
	assert.Empty(t, rec.Attachments)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(jsonRequest(`{"name":`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParse_JSONTooLarge(t *testing.T) {
	req := jsonRequest(`{"name":"` + strings.Repeat("a", 1024) + `"}`)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 64)

	_, err := Parse(req)
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestParse_Multipart(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"name": " Lee ", "message": "Miss you\n"},
		upload{"attachments", "a.jpg", "image/jpeg", []byte("jpeg-bytes")},
		upload{"attachments", "b.pdf", "application/pdf", []byte("%PDF")},
		upload{"attachments", "c.mp4", "video/mp4", []byte("mp4-bytes")},
		upload{"other", "d.png", "image/png", []byte("png")},
	)

	body, err := Parse(req)
	require.NoError(t, err)

	mb, ok := body.(MultipartBody)
	require.True(t, ok)
	assert.Equal(t, "multipart", body.Transport())

	rec := mb.Record()
	assert.Equal(t, "Lee", rec.Name)
	assert.Equal(t, "Miss you", rec.Message)
	assert.Equal(t, "", rec.Email)

	require.Len(t, rec.Attachments, 2)
	assert.Equal(t, "a.jpg", rec.Attachments[0].Name)
	assert.Equal(t, "c.mp4", rec.Attachments[1].Name)

	require.Len(t, mb.Dropped, 1)
	assert.Equal(t, DroppedFile{Name: "b.pdf", Type: "application/pdf", Reason: RejectType}, mb.Dropped[0])
}

func TestParse_MultipartPartContentTypeParams(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"name": "Lee", "message": "Miss you"},
		upload{"attachments", "a.jpg", `IMAGE/JPEG; name="a.jpg"`, []byte("jpeg")},
	)

	body, err := Parse(req)
	require.NoError(t, err)

	rec := body.Record()
	require.Len(t, rec.Attachments, 1)
	assert.Equal(t, "image/jpeg", rec.Attachments[0].Type)
	assert.Equal(t, "data:image/jpeg;base64,anBlZw==", rec.Attachments[0].URL)
}

func TestParse_MultipartOversizedFile(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"name": "Lee", "message": "Miss you"},
		upload{"attachments", "big.mp4", "video/mp4", make([]byte, 20<<20)},
	)

	body, err := Parse(req)
	require.NoError(t, err)

	mb := body.(MultipartBody)
	assert.Empty(t, mb.Record().Attachments)
	require.Len(t, mb.Dropped, 1)
	assert.Equal(t, RejectSize, mb.Dropped[0].Reason)
	assert.Equal(t, "Miss you", mb.Record().Message)
}

func TestParse_BrokenMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tributes", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	_, err := Parse(req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
