package auth

import (
	"testing"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireCaller(t *testing.T) {
	err := RequireCaller(nil, Action{Verb: "create", Resource: "post"})
	require.Error(t, err)
	assert.Equal(t, "You must be logged in to create a post", err.Error())
	assert.Equal(t, common.KindAuthentication, common.KindOf(err))

	assert.NoError(t, RequireCaller(&models.User{ID: "u1"}, Action{Verb: "send", Resource: "message"}))
}

func TestRequireCaller_ObjectOverridesArticle(t *testing.T) {
	send := Action{Verb: "send", Resource: "message", Object: "messages"}

	err := RequireCaller(nil, send)
	require.Error(t, err)
	assert.Equal(t, "You must be logged in to send messages", err.Error())

	err = RequireOwner(&models.User{ID: "bob"}, "alice", send)
	require.Error(t, err)
	assert.Equal(t, "You can only send your own messages", err.Error())
}

func TestRequireOwner(t *testing.T) {
	alice := &models.User{ID: "alice"}
	bob := &models.User{ID: "bob"}
	update := Action{Verb: "update", Resource: "post"}

	tests := []struct {
		name    string
		caller  *models.User
		wantMsg string
	}{
		{"anonymous", nil, "You must be logged in to update a post"},
		{"not owner", bob, "You can only update your own posts"},
		{"owner", alice, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwner(tt.caller, "alice", update)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, "UNAUTHENTICATED", common.KindOf(err).Code())
		})
	}
}
