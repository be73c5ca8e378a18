// Package sharelink builds and parses the shareable note URL. The note id
// rides in the path, an optional password in the query, and the encryption
// key in the fragment, which browsers never send to the server.
package sharelink

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// Link is the parsed form of a share URL.
type Link struct {
	ID       string
	Key      string
	Password string
}

// ErrBadLink indicates the URL does not carry a usable id or key.
var ErrBadLink = errors.New("malformed share link")

// keyAlphabet is the base64 character set (std and url variants, padding
// included). Anything outside it cannot be a key fragment.
var keyAlphabet = regexp.MustCompile(`^[A-Za-z0-9+/_=-]+$`)

// Build constructs the share URL for a note. base is the service origin,
// e.g. "https://notes.example.com".
func Build(base, id, key, password string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString("/note/")
	b.WriteString(url.PathEscape(id))
	if password != "" {
		b.WriteString("?password=")
		b.WriteString(url.QueryEscape(password))
	}
	b.WriteString("#")
	b.WriteString(url.PathEscape(key))
	return b.String()
}

// Parse extracts id, key and optional password from a share URL. The
// fragment is percent-decoded, anything after a stray '&' is dropped,
// and the remainder must match the base64 alphabet before it is treated
// as a key.
func Parse(raw string) (Link, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, ErrBadLink
	}

	id := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if id == "" {
		return Link{}, ErrBadLink
	}

	// url.Parse already percent-decodes Fragment.
	key := u.Fragment
	if i := strings.Index(key, "&"); i >= 0 {
		key = key[:i]
	}
	if key == "" || !keyAlphabet.MatchString(key) {
		return Link{}, ErrBadLink
	}

	return Link{
		ID:       id,
		Key:      key,
		Password: u.Query().Get("password"),
	}, nil
}
