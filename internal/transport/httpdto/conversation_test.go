package httpdto

import (
	"encoding/json"
	"testing"

	"relay-chat/internal/domain/conversation"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDList_UnmarshalJSON(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		body    string
		want    UserIDList
		wantErr bool
	}{
		{"array", `{"users":["` + a.String() + `","` + b.String() + `"]}`, UserIDList{a, b}, false},
		{"encoded string", `{"users":"[\"` + a.String() + `\",\"` + b.String() + `\"]"}`, UserIDList{a, b}, false},
		{"null", `{"users":null}`, nil, false},
		{"missing", `{}`, nil, false},
		{"empty string", `{"users":""}`, nil, false},
		{"empty array", `{"users":[]}`, UserIDList{}, false},
		{"encoded empty array", `{"users":"[]"}`, UserIDList{}, false},
		{"bad id", `{"users":["not-an-id"]}`, nil, true},
		{"bad shape", `{"users":42}`, nil, true},
		{"bad encoded", `{"users":"[oops"}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateGroupRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Users)
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	want := uuid.New()
	id, err = ParseOptionalID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = ParseOptionalID("123")
	assert.Error(t, err)
}

func TestFromConversation_HidesPassword(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice", PasswordHash: "hash"}
	bob := user.User{ID: uuid.New(), Username: "bob", PasswordHash: "hash"}
	latest := message.Message{ID: uuid.New(), SenderID: alice.ID, Sender: alice, Content: "hi"}

	dto := FromConversation(conversation.Conversation{
		ID:            uuid.New(),
		Participants:  []user.User{alice, bob},
		LatestMessage: &latest,
	})

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "hash")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["groupAdmin"])
	assert.Len(t, decoded["users"], 2)
	latestMsg := decoded["latestMessage"].(map[string]interface{})
	assert.Equal(t, "alice", latestMsg["sender"].(map[string]interface{})["username"])
	assert.Equal(t, []interface{}{}, latestMsg["readBy"])
}
