// Package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB
package basesvc

import (
	"context"
	"time"

	"org_manager/internal/common"
	"org_manager/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseServiceMongo định nghĩa interface chứa các phương thức cơ bản cho việc
// tương tác với MongoDB.
// Type Parameters:
//   - Model: Kiểu dữ liệu của model
type BaseServiceMongo[Model any] interface {
	// Thao tác Insert
	InsertOne(ctx context.Context, data Model) (Model, error)
	InsertMany(ctx context.Context, data []Model) ([]Model, error)

	// Thao tác Find
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)

	// Thao tác Update
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (Model, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error)

	// Thao tác Delete
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)

	// Thao tác Atomic
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (Model, error)
	FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (Model, error)

	// Các thao tác khác
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên một collection cụ thể.
// Collection có thể là collection master hoặc collection dữ liệu của tenant —
// service không phân biệt, caller quyết định qua handle được truyền vào.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection // Collection MongoDB
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl trên collection
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// InsertOne tạo mới một bản ghi trong database.
// Timestamps createdAt/updatedAt (UnixMilli) được gắn tự động.
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	// Chuyển data thành map để thêm timestamps
	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	// Lấy lại document vừa tạo
	var created T
	err = s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	return created, nil
}

// InsertMany tạo nhiều bản ghi trong database
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	var documents []interface{}
	now := time.Now().UnixMilli()

	for _, item := range data {
		dataMap, err := utility.ToMap(item)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}
		dataMap["createdAt"] = now
		dataMap["updatedAt"] = now
		documents = append(documents, dataMap)
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": result.InsertedIDs}})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var created []T
	if err := cursor.All(ctx, &created); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return created, nil
}

// FindOne tìm một bản ghi theo filter.
// Không tìm thấy trả về common.ErrNotFound.
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	err := s.collection.FindOne(ctx, filter, opts).Decode(&result)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return result, nil
}

// Find tìm nhiều bản ghi theo filter
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindOneById tìm một bản ghi theo ObjectID
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// UpdateOne cập nhật một bản ghi theo filter và trả về bản ghi sau cập nhật.
// updatedAt được làm mới tự động.
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T

	updateDoc, err := withUpdatedAt(update)
	if err != nil {
		return zero, err
	}

	result, err := s.collection.UpdateOne(ctx, filter, updateDoc, opts)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return zero, common.ErrNotFound
	}

	return s.FindOne(ctx, filter, nil)
}

// UpdateMany cập nhật nhiều bản ghi theo filter, trả về số bản ghi được sửa
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	updateDoc, err := withUpdatedAt(update)
	if err != nil {
		return 0, err
	}

	result, err := s.collection.UpdateMany(ctx, filter, updateDoc, opts)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.ModifiedCount, nil
}

// DeleteOne xóa một bản ghi theo filter.
// Không có bản ghi nào khớp trả về common.ErrNotFound.
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteMany xóa nhiều bản ghi theo filter, trả về số bản ghi đã xóa
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.DeletedCount, nil
}

// FindOneAndUpdate tìm và cập nhật một bản ghi trong một thao tác atomic.
// Đây là primitive chính của catalog: chuyển trạng thái một entry trong một
// document update duy nhất, không cần transaction.
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T
	var result T

	updateDoc, err := withUpdatedAt(update)
	if err != nil {
		return zero, err
	}

	if opts == nil {
		opts = options.FindOneAndUpdate()
	}
	if opts.ReturnDocument == nil {
		opts.SetReturnDocument(options.After)
	}

	err = s.collection.FindOneAndUpdate(ctx, filter, updateDoc, opts).Decode(&result)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return result, nil
}

// FindOneAndDelete tìm và xóa một bản ghi trong một thao tác atomic
func (s *BaseServiceMongoImpl[T]) FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (T, error) {
	var zero T
	var result T

	err := s.collection.FindOneAndDelete(ctx, filter, opts).Decode(&result)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return result, nil
}

// CountDocuments đếm số bản ghi khớp filter
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// DocumentExists kiểm tra có bản ghi nào khớp filter hay không
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}

// withUpdatedAt đảm bảo update document có $set.updatedAt.
// Update đã chứa operator ($set, $unset, ...) thì giữ nguyên các operator đó.
func withUpdatedAt(update interface{}) (bson.M, error) {
	updateMap, err := utility.ToMap(update)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}

	hasOperator := false
	for key := range updateMap {
		if len(key) > 0 && key[0] == '$' {
			hasOperator = true
			break
		}
	}

	var doc bson.M
	if hasOperator {
		doc = bson.M(updateMap)
	} else {
		doc = bson.M{"$set": bson.M(updateMap)}
	}

	set, ok := doc["$set"].(map[string]interface{})
	if ok {
		set["updatedAt"] = time.Now().UnixMilli()
		doc["$set"] = set
		return doc, nil
	}
	if set2, ok := doc["$set"].(bson.M); ok {
		set2["updatedAt"] = time.Now().UnixMilli()
		doc["$set"] = set2
		return doc, nil
	}
	if _, exists := doc["$set"]; !exists {
		doc["$set"] = bson.M{"updatedAt": time.Now().UnixMilli()}
	}
	return doc, nil
}
