// Package convert maps between wire JSON DTOs and domain structs.
package convert

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/m-yakovlev/sealnote/internal/model"
)

// CreateNoteRequest is the create call body. Binary fields are base64.
type CreateNoteRequest struct {
	EncryptedData string  `json:"encryptedData"`
	EncryptedKey  string  `json:"encryptedKey"`
	IV            string  `json:"iv"`
	AuthTag       string  `json:"authTag"`
	ExpiresAt     *string `json:"expiresAt"` // RFC3339 or null
	MaxViews      int     `json:"maxViews"`
	IsFile        bool    `json:"isFile"`
	FileName      *string `json:"fileName"`
	MimeType      *string `json:"mimeType"`
	Password      string  `json:"password,omitempty"`
}

// CreateNoteResponse acknowledges a stored note.
type CreateNoteResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	DeleteToken string    `json:"deleteToken,omitempty"`
}

// NoteResponse is the read call body: payload fields plus view accounting.
type NoteResponse struct {
	EncryptedData string  `json:"encryptedData"`
	EncryptedKey  string  `json:"encryptedKey"`
	IV            string  `json:"iv"`
	AuthTag       string  `json:"authTag"`
	IsFile        bool    `json:"isFile"`
	FileName      *string `json:"fileName"`
	MimeType      *string `json:"mimeType"`
	ViewCount     int     `json:"viewCount"`
	MaxViews      int     `json:"maxViews"`
}

// FromWireCreate validates shape and decodes a create request into domain form.
func FromWireCreate(in CreateNoteRequest) (model.CreateNote, error) {
	data, err := b64Field("encryptedData", in.EncryptedData, true)
	if err != nil {
		return model.CreateNote{}, err
	}
	key, err := b64Field("encryptedKey", in.EncryptedKey, false)
	if err != nil {
		return model.CreateNote{}, err
	}
	iv, err := b64Field("iv", in.IV, true)
	if err != nil {
		return model.CreateNote{}, err
	}
	tag, err := b64Field("authTag", in.AuthTag, true)
	if err != nil {
		return model.CreateNote{}, err
	}

	out := model.CreateNote{
		Ciphertext:   data,
		EncryptedKey: key,
		IV:           iv,
		AuthTag:      tag,
		IsFile:       in.IsFile,
		MaxViews:     in.MaxViews,
		Password:     in.Password,
	}
	if in.FileName != nil {
		out.FileName = *in.FileName
	}
	if in.MimeType != nil {
		out.MimeType = *in.MimeType
	}
	if in.ExpiresAt != nil && *in.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, *in.ExpiresAt)
		if err != nil {
			return model.CreateNote{}, fmt.Errorf("validation: bad expiresAt: %w", err)
		}
		t = t.UTC()
		out.ExpiresAt = &t
	}
	return out, nil
}

// ToWireNote encodes a successful read result.
func ToWireNote(v *model.NoteView) NoteResponse {
	out := NoteResponse{
		EncryptedData: base64.StdEncoding.EncodeToString(v.Ciphertext),
		EncryptedKey:  base64.StdEncoding.EncodeToString(v.EncryptedKey),
		IV:            base64.StdEncoding.EncodeToString(v.IV),
		AuthTag:       base64.StdEncoding.EncodeToString(v.AuthTag),
		IsFile:        v.IsFile,
		ViewCount:     v.ViewCount,
		MaxViews:      v.MaxViews,
	}
	if v.FileName != "" {
		out.FileName = &v.FileName
	}
	if v.MimeType != "" {
		out.MimeType = &v.MimeType
	}
	return out
}

func b64Field(name, val string, required bool) ([]byte, error) {
	if val == "" {
		if required {
			return nil, fmt.Errorf("validation: missing %s", name)
		}
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("validation: %s is not base64", name)
	}
	return b, nil
}
