package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/AnshRaj112/frontline-fury-backend/internal/models"
)

type staticSource struct {
	db *mongo.Database
}

func (s staticSource) Database() *mongo.Database { return s.db }

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

func newFeedbacks(db *mongo.Database) *Collection[models.Feedback] {
	c := NewCollection[models.Feedback](staticSource{db: db}, "feedbacks")
	c.now = func() time.Time { return fixedNow }
	return c
}

func feedbackDoc(id primitive.ObjectID, rating float64, thoughts string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "rating", Value: rating},
		{Key: "thoughts", Value: thoughts},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
		{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(created)},
	}
}

func TestCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "db.feedbacks"

	mt.Run("list decodes newest first batch", func(mt *mtest.T) {
		newer, older := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			feedbackDoc(newer, 5, "great", fixedNow),
			feedbackDoc(older, 2, "meh", fixedNow.Add(-time.Hour)),
		))

		records, err := newFeedbacks(mt.DB).List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, newer, records[0].ID)
		assert.Equal(mt, 5.0, *records[0].Rating)
		assert.Equal(mt, "meh", *records[1].Thoughts)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		sort := started.Command.Lookup("sort").Document()
		keys, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 2)
		assert.Equal(mt, "createdAt", keys[0].Key())
		assert.Equal(mt, int32(-1), keys[0].Value().Int32())
	})

	mt.Run("list of empty collection is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		records, err := newFeedbacks(mt.DB).List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})

	mt.Run("list surfaces storage errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))

		_, err := newFeedbacks(mt.DB).List(context.Background())
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("get returns the record", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			feedbackDoc(id, 4, "fun", fixedNow)))

		record, err := newFeedbacks(mt.DB).Get(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id, record.ID)
		assert.Equal(mt, "fun", *record.Thoughts)
		assert.Nil(mt, record.ArenaUpgrade)
		assert.True(mt, record.CreatedAt.Equal(fixedNow.Truncate(time.Millisecond)))
	})

	mt.Run("get of absent id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newFeedbacks(mt.DB).Get(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed ids never reach the server", func(mt *mtest.T) {
		c := newFeedbacks(mt.DB)

		_, err := c.Get(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrInvalidID)
		_, err = c.Update(context.Background(), "123", models.Fields{})
		assert.ErrorIs(mt, err, ErrInvalidID)
		assert.ErrorIs(mt, c.Delete(context.Background(), "zzz"), ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record, err := newFeedbacks(mt.DB).Create(context.Background(), models.Fields{
			"rating":        float64(5),
			"thoughts":      "great",
			"arena_upgrade": nil,
		})
		require.NoError(mt, err)

		assert.False(mt, record.ID.IsZero())
		assert.Equal(mt, 5.0, *record.Rating)
		assert.Equal(mt, "great", *record.Thoughts)
		assert.Nil(mt, record.ArenaUpgrade)
		want := fixedNow.Truncate(time.Millisecond)
		assert.True(mt, record.CreatedAt.Equal(want))
		assert.True(mt, record.UpdatedAt.Equal(want))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("update returns the post-update document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key: "value", Value: feedbackDoc(id, 3, "great", fixedNow),
		}))

		record, err := newFeedbacks(mt.DB).Update(context.Background(), id.Hex(), models.Fields{"rating": float64(3)})
		require.NoError(mt, err)
		assert.Equal(mt, 3.0, *record.Rating)
		assert.Equal(mt, "great", *record.Thoughts)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		assert.True(mt, started.Command.Lookup("new").Boolean())
	})

	mt.Run("update of absent id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := newFeedbacks(mt.DB).Update(context.Background(), primitive.NewObjectID().Hex(), models.Fields{"rating": float64(1)})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(mt, newFeedbacks(mt.DB).Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("delete of absent id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := newFeedbacks(mt.DB).Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestCollectionUnavailable(t *testing.T) {
	c := NewCollection[models.PreBooking](staticSource{}, "prebookings")

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = c.Create(context.Background(), models.Fields{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = c.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBuildUpdate(t *testing.T) {
	now := fixedNow.Truncate(time.Millisecond)
	update := buildUpdate(models.Fields{
		"rating":        float64(3),
		"thoughts":      nil,
		"arena_upgrade": "bigger screens",
	}, now)

	assert.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "arena_upgrade", Value: "bigger screens"},
			{Key: "rating", Value: float64(3)},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$unset", Value: bson.D{
			{Key: "thoughts", Value: ""},
		}},
	}, update)
}

func TestBuildUpdateEmptyPayloadOnlyTouchesUpdatedAt(t *testing.T) {
	now := fixedNow.Truncate(time.Millisecond)
	assert.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
	}, buildUpdate(models.Fields{}, now))
}
