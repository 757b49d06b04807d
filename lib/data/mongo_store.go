package data

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"opsconsole/lib/apperr"
	"opsconsole/lib/models"
)

// MongoStore keeps each collection in a Mongo collection of the same name.
// Documents are addressed by their "id" field; Mongo's own _id is never
// returned to callers.
type MongoStore struct {
	DB     *mongo.Database
	Logger *logrus.Logger
}

func (dao *MongoStore) Insert(ctx context.Context, collection string, doc models.Document) error {
	if doc.ID() == "" {
		return apperr.Storage("insert", errors.New("document has no id"))
	}
	// InsertOne adds _id to the map it is given.
	if _, err := dao.DB.Collection(collection).InsertOne(ctx, bson.M(doc.Clone())); err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Insert",
			"collection": collection,
			"id":         doc.ID(),
			"error":      err.Error(),
		}).Error("Failed to insert document")
		return apperr.Storage("insert", err)
	}
	return nil
}

func (dao *MongoStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]models.Document, error) {
	projection := bson.D{{Key: "_id", Value: 0}}
	for _, field := range opts.Projection {
		projection = append(projection, bson.E{Key: field, Value: 1})
	}
	findOpts := options.Find().SetProjection(projection)
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := dao.DB.Collection(collection).Find(ctx, mongoFilter(filter), findOpts)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Find",
			"collection": collection,
			"error":      err.Error(),
		}).Error("Failed to query documents")
		return nil, apperr.Storage("find", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, apperr.Storage("find", err)
	}

	docs := make([]models.Document, 0, len(raw))
	for _, r := range raw {
		doc, err := normalizeDocument(map[string]interface{}(r))
		if err != nil {
			return nil, apperr.Storage("find", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (dao *MongoStore) Update(ctx context.Context, collection, id string, partial models.Document) (int64, error) {
	result, err := dao.DB.Collection(collection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M(partial)},
	)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Update",
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to update document")
		return 0, apperr.Storage("update", err)
	}
	return result.MatchedCount, nil
}

func (dao *MongoStore) Delete(ctx context.Context, collection, id string) (int64, error) {
	result, err := dao.DB.Collection(collection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Delete",
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to delete document")
		return 0, apperr.Storage("delete", err)
	}
	return result.DeletedCount, nil
}

func (dao *MongoStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	result, err := dao.DB.Collection(collection).DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "DeleteMany",
			"collection": collection,
			"error":      err.Error(),
		}).Error("Failed to delete documents")
		return 0, apperr.Storage("delete many", err)
	}
	return result.DeletedCount, nil
}

func (dao *MongoStore) Close(ctx context.Context) error {
	if err := dao.DB.Client().Disconnect(ctx); err != nil {
		return apperr.Storage("close", err)
	}
	return nil
}

func mongoFilter(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
