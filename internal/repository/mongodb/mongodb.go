package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"thethought-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect 建立 MongoDB 连接并验证可用性
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB 连接测试失败: %w", err)
	}
	return client, nil
}

// containsRegex 构造大小写不敏感的子串匹配条件
func containsRegex(query string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
}

// feedFilter 构造信息流的可见性过滤条件：
// 公开内容，外加已关注作者的 public/followers 内容
func feedFilter(viewer *model.User) bson.M {
	if viewer == nil {
		return bson.M{"visibility": model.VisibilityPublic}
	}
	return bson.M{
		"$or": bson.A{
			bson.M{"visibility": model.VisibilityPublic},
			bson.M{
				"author":     bson.M{"$in": viewer.Following},
				"visibility": bson.M{"$in": bson.A{model.VisibilityPublic, model.VisibilityFollowers}},
			},
		},
	}
}

// findPageOpts 构造按创建时间倒序的分页查询选项
func findPageOpts(page, pageSize int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
}
