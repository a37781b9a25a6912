package gitrepo_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
)

// wrap60 mimics the contents API, which breaks base64 content every 60 chars.
func wrap60(s string) string {
	var b strings.Builder
	for len(s) > 60 {
		b.WriteString(s[:60])
		b.WriteString("\n")
		s = s[60:]
	}
	b.WriteString(s)
	b.WriteString("\n")
	return b.String()
}

func TestInlineFile_DecodeStripsLineBreaks(t *testing.T) {
	raw := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 10))
	f := gitrepo.InlineFile{
		Type:     gitrepo.TypeFile,
		Name:     "fox.txt",
		Encoding: gitrepo.EncodingBase64,
		Content:  wrap60(base64.StdEncoding.EncodeToString(raw)),
	}

	got, err := f.Decode()
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestInlineFile_DecodeCRLF(t *testing.T) {
	f := gitrepo.InlineFile{
		Name:     "a",
		Encoding: gitrepo.EncodingBase64,
		Content:  "aGVs\r\nbG8=\r\n",
	}
	got, err := f.Decode()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestInlineFile_DecodeErrors(t *testing.T) {
	_, err := (&gitrepo.InlineFile{Name: "a", Encoding: "utf-8", Content: "x"}).Decode()
	require.Error(t, err)

	_, err = (&gitrepo.InlineFile{Name: "a", Encoding: gitrepo.EncodingBase64, Content: "!!!"}).Decode()
	require.Error(t, err)
}

func TestListing_Invalid(t *testing.T) {
	var nilListing *gitrepo.Listing
	assert.True(t, nilListing.Invalid())
	assert.True(t, (&gitrepo.Listing{}).Invalid())
	assert.False(t, (&gitrepo.Listing{IsArray: true}).Invalid())
	assert.False(t, (&gitrepo.Listing{File: &gitrepo.InlineFile{}}).Invalid())
}
