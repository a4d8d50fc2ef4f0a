package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// Seed documents must marshal without an _id so Mongo assigns ObjectIDs —
// the repositories query _id as ObjectID and would never find string IDs
func TestSeedDocumentsOmitID(t *testing.T) {
	now := time.Now()

	interview := demoInterview("ivr_test", now)
	data, err := bson.Marshal(interview)
	require.NoError(t, err)
	assert.Nil(t, bson.Raw(data).Lookup("_id").Value)

	for _, doc := range demoQuestions("64f000000000000000000001", now) {
		data, err := bson.Marshal(doc)
		require.NoError(t, err)
		assert.Nil(t, bson.Raw(data).Lookup("_id").Value)
	}

	link := demoLink("ivr_test", now)
	data, err = bson.Marshal(link)
	require.NoError(t, err)
	assert.Nil(t, bson.Raw(data).Lookup("_id").Value)
}

func TestSeedQuestionsBelongToInterview(t *testing.T) {
	now := time.Now()
	docs := demoQuestions("64f000000000000000000001", now)
	require.NotEmpty(t, docs)
	for i, doc := range docs {
		data, err := bson.Marshal(doc)
		require.NoError(t, err)
		raw := bson.Raw(data)
		assert.Equal(t, "64f000000000000000000001", raw.Lookup("interviewId").StringValue())
		order, ok := raw.Lookup("order").AsInt64OK()
		require.True(t, ok)
		assert.Equal(t, int64(i), order)
	}
}

func TestSeedLinkTokenUsable(t *testing.T) {
	now := time.Now()
	link := demoLink("ivr_test", now)
	assert.NotEmpty(t, link.Token)
	assert.NotContains(t, link.Token, "-")
	assert.True(t, link.Usable(now))
}
