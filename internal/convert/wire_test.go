package convert

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m-yakovlev/sealnote/internal/model"
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func validWire() CreateNoteRequest {
	return CreateNoteRequest{
		EncryptedData: b64([]byte("ciphertext")),
		IV:            b64([]byte("iv-iv-iv-iv-")),
		AuthTag:       b64([]byte("tag-tag-tag-tag-")),
	}
}

func TestFromWireCreate_OK(t *testing.T) {
	t.Parallel()

	in := validWire()
	in.EncryptedKey = b64([]byte("wrapped-key"))
	in.MaxViews = 3
	in.Password = "pw"

	out, err := FromWireCreate(in)
	require.NoError(t, err)
	require.Equal(t, []byte("ciphertext"), out.Ciphertext)
	require.Equal(t, []byte("wrapped-key"), out.EncryptedKey)
	require.Equal(t, []byte("iv-iv-iv-iv-"), out.IV)
	require.Equal(t, []byte("tag-tag-tag-tag-"), out.AuthTag)
	require.Equal(t, 3, out.MaxViews)
	require.Equal(t, "pw", out.Password)
	require.Nil(t, out.ExpiresAt)
}

func TestFromWireCreate_EncryptedKeyOptional(t *testing.T) {
	t.Parallel()

	out, err := FromWireCreate(validWire())
	require.NoError(t, err)
	require.Nil(t, out.EncryptedKey)
}

func TestFromWireCreate_MissingRequiredFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*CreateNoteRequest)
	}{
		{"missing encryptedData", func(r *CreateNoteRequest) { r.EncryptedData = "" }},
		{"missing iv", func(r *CreateNoteRequest) { r.IV = "" }},
		{"missing authTag", func(r *CreateNoteRequest) { r.AuthTag = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validWire()
			tc.mutate(&in)
			_, err := FromWireCreate(in)
			require.Error(t, err)
			require.Contains(t, err.Error(), "validation: missing")
		})
	}
}

func TestFromWireCreate_BadBase64(t *testing.T) {
	t.Parallel()

	in := validWire()
	in.EncryptedData = "!!! not base64 !!!"
	_, err := FromWireCreate(in)
	require.ErrorContains(t, err, "validation: encryptedData is not base64")
}

func TestFromWireCreate_ExpiresAt(t *testing.T) {
	t.Parallel()

	in := validWire()
	ts := "2026-09-01T12:00:00+03:00"
	in.ExpiresAt = &ts

	out, err := FromWireCreate(in)
	require.NoError(t, err)
	require.NotNil(t, out.ExpiresAt)
	require.Equal(t, time.UTC, out.ExpiresAt.Location())
	require.Equal(t, 9, out.ExpiresAt.Hour())

	bad := "tomorrow"
	in.ExpiresAt = &bad
	_, err = FromWireCreate(in)
	require.ErrorContains(t, err, "validation: bad expiresAt")

	empty := ""
	in.ExpiresAt = &empty
	out, err = FromWireCreate(in)
	require.NoError(t, err)
	require.Nil(t, out.ExpiresAt)
}

func TestFromWireCreate_FileMetadata(t *testing.T) {
	t.Parallel()

	in := validWire()
	in.IsFile = true
	name, mime := "report.pdf", "application/pdf"
	in.FileName, in.MimeType = &name, &mime

	out, err := FromWireCreate(in)
	require.NoError(t, err)
	require.True(t, out.IsFile)
	require.Equal(t, "report.pdf", out.FileName)
	require.Equal(t, "application/pdf", out.MimeType)
}

func TestToWireNote(t *testing.T) {
	t.Parallel()

	v := &model.NoteView{
		Ciphertext: []byte("ct"),
		IV:         []byte("iv"),
		AuthTag:    []byte("tag"),
		IsFile:     true,
		FileName:   "a.bin",
		MimeType:   "application/octet-stream",
		ViewCount:  2,
		MaxViews:   5,
	}
	out := ToWireNote(v)
	require.Equal(t, b64([]byte("ct")), out.EncryptedData)
	require.Empty(t, out.EncryptedKey)
	require.Equal(t, b64([]byte("iv")), out.IV)
	require.Equal(t, b64([]byte("tag")), out.AuthTag)
	require.NotNil(t, out.FileName)
	require.Equal(t, "a.bin", *out.FileName)
	require.Equal(t, 2, out.ViewCount)
	require.Equal(t, 5, out.MaxViews)
}

func TestToWireNote_TextNoteOmitsFileFields(t *testing.T) {
	t.Parallel()

	out := ToWireNote(&model.NoteView{Ciphertext: []byte("x"), IV: []byte("y"), AuthTag: []byte("z")})
	require.Nil(t, out.FileName)
	require.Nil(t, out.MimeType)
}
