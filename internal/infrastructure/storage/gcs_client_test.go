package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2024, time.March, 2, 10, 4, 5, 0, time.UTC)

	name := ObjectName("/chats/abc/", "image/png", now)
	assert.True(t, strings.HasPrefix(name, "chats/abc/"))
	assert.True(t, strings.HasSuffix(name, "-20240302100405.png"))

	assert.True(t, strings.HasSuffix(ObjectName("media", "application/zip", now), ".bin"))
	assert.NotEqual(t, ObjectName("media", "image/png", now), ObjectName("media", "image/png", now))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/media/a.png", PublicURL("bucket", "media/a.png"))
}
