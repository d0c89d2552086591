package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestR2ConfigEnabled(t *testing.T) {
	assert.False(t, R2Config{}.Enabled())
	assert.True(t, R2Config{AccountID: "acc", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "b"}.Enabled())
}

func TestR2PublicURL(t *testing.T) {
	c, err := NewR2Client(context.Background(), R2Config{
		AccountID: "acc", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "replays",
		CDNBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/replays/a/0.json", c.PublicURL("/replays/a/0.json"))

	c, err = NewR2Client(context.Background(), R2Config{AccountID: "acc", AccessKeyID: "k", AccessKeySecret: "s", Bucket: "replays"})
	require.NoError(t, err)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/replays/x.json", c.PublicURL("x.json"))
}
