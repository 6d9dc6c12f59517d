package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"full url", "https://bucket.s3.us-east-1.amazonaws.com/7/7-front.png", "7-front.png"},
		{"trailing segment only", "7-front.png", "7-front.png"},
		{"trailing slash", "https://bucket.s3.us-east-1.amazonaws.com/7/", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKeyFromURL(tt.url))
		})
	}
}
