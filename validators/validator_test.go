package validators

import (
	"testing"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNotificationTypeTag(t *testing.T) {
	v := NewValidator()

	ok := models.BroadcastRequest{Type: "announcement", Message: "hi", Recipient: "all"}
	assert.NoError(t, v.Validate(&ok))

	bad := models.BroadcastRequest{Type: "poke", Message: "hi", Recipient: "all"}
	assert.Error(t, v.Validate(&bad))
}

func TestCreateNotificationRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		req   models.CreateNotificationRequest
		valid bool
	}{
		{"follow", models.CreateNotificationRequest{Type: "follow"}, true},
		{"bad class", models.CreateNotificationRequest{Type: "follow", RecipientClass: "everyone"}, false},
		{"short post id", models.CreateNotificationRequest{Type: "like", PostID: "abc"}, false},
		{"hex post id", models.CreateNotificationRequest{Type: "like", PostID: "64b7f0c2a1b2c3d4e5f60001"}, true},
		{"missing type", models.CreateNotificationRequest{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
