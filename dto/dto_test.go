package dto

import (
	"encoding/json"
	"testing"
	"time"

	"noteshare/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNoteResponse(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	note := &model.Note{
		ID:        "n1",
		Title:     "T1",
		CreatedAt: time.Date(2024, 3, 9, 14, 5, 7, 0, loc),
	}

	resp := ToNoteResponse(note, "alice", 2, 1)
	assert.Equal(t, "2024-03-09 12:05:07", resp.CreatedAt)
	assert.Equal(t, "alice", resp.Username)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "image_url")
	assert.Nil(t, fields["image_url"])
	assert.EqualValues(t, 2, fields["favorite_count"])
	assert.EqualValues(t, 1, fields["comment_count"])
}

func TestToCommentResponse(t *testing.T) {
	c := &model.Comment{ID: "c1", NoteID: "n1", Content: "hi", CreatedAt: time.Date(2024, 3, 9, 14, 5, 59, 0, time.UTC)}
	resp := ToCommentResponse(c, "bob")
	assert.Equal(t, "2024-03-09 14:05", resp.CreatedAt)
	assert.Equal(t, "bob", resp.Username)
}

func TestToUserResponseHidesSecrets(t *testing.T) {
	user := &model.User{ID: "u1", Username: "alice", PasswordHash: "salt$hash", TwoFactorSecret: "JBSWY3DPEHPK3PXP"}
	raw, err := json.Marshal(ToUserResponse(user))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "salt$hash")
	assert.NotContains(t, string(raw), "JBSWY3DPEHPK3PXP")
}
