package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURLRoundTrip(t *testing.T) {
	s := &S3Store{bucket: "velstore-images", region: "us-east-1"}

	url := s.ObjectURL("7/7-front.png")
	assert.Equal(t, "https://velstore-images.s3.us-east-1.amazonaws.com/7/7-front.png", url)
	assert.Equal(t, "7/7-front.png", s.KeyFromURL(url))
}

func TestKeyFromURL_ForeignURL(t *testing.T) {
	s := &S3Store{bucket: "velstore-images", region: "us-east-1"}

	assert.Empty(t, s.KeyFromURL("https://other-bucket.s3.us-east-1.amazonaws.com/7/7-front.png"))
	assert.Empty(t, s.KeyFromURL(""))
}
