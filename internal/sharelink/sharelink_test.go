package sharelink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildParse_RoundTrip(t *testing.T) {
	t.Parallel()

	url := Build("https://notes.example.com", "abc123", "Zm9v", "pw1")
	link, err := Parse(url)
	require.NoError(t, err)
	require.Equal(t, "abc123", link.ID)
	require.Equal(t, "Zm9v", link.Key)
	require.Equal(t, "pw1", link.Password)
}

func TestBuildParse_NoPassword(t *testing.T) {
	t.Parallel()

	url := Build("https://notes.example.com/", "abc123", "Zm9vYmFy", "")
	require.NotContains(t, url, "?")

	link, err := Parse(url)
	require.NoError(t, err)
	require.Equal(t, "abc123", link.ID)
	require.Equal(t, "Zm9vYmFy", link.Key)
	require.Empty(t, link.Password)
}

func TestParse_StrayAmpersandInFragment(t *testing.T) {
	t.Parallel()

	// Concatenation mistakes can glue extra params onto the fragment.
	link, err := Parse("https://notes.example.com/note/abc123#Zm9v&utm_source=chat")
	require.NoError(t, err)
	require.Equal(t, "Zm9v", link.Key)
}

func TestParse_KeyMustMatchBase64Alphabet(t *testing.T) {
	t.Parallel()

	_, err := Parse("https://notes.example.com/note/abc123#not a key!")
	require.ErrorIs(t, err, ErrBadLink)
}

func TestParse_MissingParts(t *testing.T) {
	t.Parallel()

	_, err := Parse("https://notes.example.com/note/abc123")
	require.ErrorIs(t, err, ErrBadLink, "no fragment")

	_, err = Parse("https://notes.example.com/#Zm9v")
	require.ErrorIs(t, err, ErrBadLink, "no id")
}

func TestParse_PercentDecodedFragment(t *testing.T) {
	t.Parallel()

	// '+' and '=' survive percent-encoding of a std-base64 key.
	link, err := Parse("https://notes.example.com/note/abc123#a%2Bb%2Fc%3D")
	require.NoError(t, err)
	require.Equal(t, "a+b/c=", link.Key)
}
