package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"thethought-backend/config"
	"thethought-backend/internal/api/message"
	"thethought-backend/internal/api/post"
	"thethought-backend/internal/api/reel"
	"thethought-backend/internal/api/user"
	"thethought-backend/internal/middleware"
	"thethought-backend/internal/repository/filestore"
	"thethought-backend/internal/repository/interfaces"
	"thethought-backend/internal/repository/mongodb"
	"thethought-backend/internal/service"
	"thethought-backend/internal/storage"
	"thethought-backend/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 初始化存储库（mongo 或本地文件状态）
	var (
		userRepo    interfaces.UserRepository
		postRepo    interfaces.PostRepository
		reelRepo    interfaces.ReelRepository
		messageRepo interfaces.MessageRepository
	)

	switch config.AppConfig.StoreBackend {
	case "file":
		store, err := filestore.Open(config.AppConfig.FileStorePath)
		if err != nil {
			util.Logger.Fatal("打开本地状态文件失败", zap.Error(err))
		}
		userRepo = filestore.NewUserRepository(store)
		postRepo = filestore.NewPostRepository(store)
		reelRepo = filestore.NewReelRepository(store)
		messageRepo = filestore.NewMessageRepository(store)
		util.Logger.Info("使用本地文件状态存储", zap.String("path", config.AppConfig.FileStorePath))
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongodb.Connect(ctx, config.AppConfig.MongoURI)
		cancel()
		if err != nil {
			util.Logger.Fatal("连接MongoDB失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				util.Logger.Error("断开MongoDB连接失败", zap.Error(err))
			}
		}()
		db := client.Database(config.AppConfig.MongoDatabase)
		userRepo = mongodb.NewUserRepository(db)
		postRepo = mongodb.NewPostRepository(db)
		reelRepo = mongodb.NewReelRepository(db)
		messageRepo = mongodb.NewMessageRepository(db)
		util.Logger.Info("MongoDB连接成功", zap.String("database", config.AppConfig.MongoDatabase))
	}

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("visibility", util.ValidateVisibility)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化文件存储后端
	var fileStorage storage.Storage
	switch config.AppConfig.StorageBackend {
	case "s3":
		s3Client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化S3客户端失败", zap.Error(err))
		}
		fileStorage = s3Client
	case "gcs":
		gcsClient, err := storage.NewGCSClient(
			config.AppConfig.GCSProjectID,
			config.AppConfig.GCSBucketName,
			config.AppConfig.GCSCredentialsFile)
		if err != nil {
			util.Logger.Fatal("初始化GCS客户端失败", zap.Error(err))
		}
		fileStorage = gcsClient
	default:
		localStorage, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		fileStorage = localStorage
	}

	// 令牌黑名单：配置了 Redis 时共享，否则退化为内存实现
	var blacklist service.TokenBlacklist
	if config.AppConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.AppConfig.RedisAddr})
		blacklist = service.NewRedisBlacklist(rdb)
		util.Logger.Info("令牌黑名单使用Redis", zap.String("addr", config.AppConfig.RedisAddr))
	} else {
		blacklist = service.NewMemoryBlacklist()
	}

	// 初始化服务和处理器
	userService := service.NewUserService(userRepo, postRepo, reelRepo, blacklist)
	postService := service.NewPostService(postRepo, userRepo)
	reelService := service.NewReelService(reelRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)

	authHandler := user.NewAuthHandler(userService, fileStorage)
	userHandler := user.NewUserHandler(userService)
	postHandler := post.NewPostHandler(postService, userService)
	reelHandler := reel.NewReelHandler(reelService, userService, fileStorage)
	messageHandler := message.NewMessageHandler(messageService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 本地存储模式下直接提供上传的文件
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	requireAuth := middleware.AuthMiddleware(userService)
	optionalAuth := middleware.OptionalAuthMiddleware(userService)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 账号相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		authorized := api.Group("/")
		authorized.Use(requireAuth)
		{
			authorized.POST("/logout", authHandler.Logout)
			authorized.GET("/profile", authHandler.GetProfile)
			authorized.PUT("/profile", authHandler.UpdateProfile)
			authorized.POST("/profile/avatar", authHandler.UploadAvatar)
		}

		// 想法相关路由
		api.GET("/posts", optionalAuth, postHandler.GetFeed)
		api.POST("/posts", requireAuth, postHandler.CreatePost)
		api.GET("/posts/:id", optionalAuth, postHandler.GetPost)
		api.POST("/posts/:id/like", requireAuth, postHandler.ToggleLike)
		api.POST("/posts/:id/comment", requireAuth, postHandler.AddComment)
		api.POST("/posts/:id/share", requireAuth, postHandler.SharePost)
		api.DELETE("/posts/:id", requireAuth, postHandler.DeletePost)
		api.GET("/posts/search/:query", optionalAuth, postHandler.SearchPosts)

		// 短视频相关路由
		api.GET("/reels", optionalAuth, reelHandler.GetFeed)
		api.POST("/reels", requireAuth, reelHandler.CreateReel)
		api.GET("/reels/:id", optionalAuth, reelHandler.GetReel)
		api.POST("/reels/:id/like", requireAuth, reelHandler.ToggleLike)
		api.POST("/reels/:id/comment", requireAuth, reelHandler.AddComment)
		api.POST("/reels/:id/share", requireAuth, reelHandler.ShareReel)
		api.DELETE("/reels/:id", requireAuth, reelHandler.DeleteReel)
		api.GET("/reels/search/:query", optionalAuth, reelHandler.SearchReels)

		// 私信相关路由
		messages := api.Group("/messages")
		messages.Use(requireAuth)
		{
			messages.GET("/conversations", messageHandler.GetConversations)
			messages.GET("/conversation/:userId", messageHandler.GetThread)
			messages.POST("/send", messageHandler.SendMessage)
			messages.PUT("/:id/read", messageHandler.MarkRead)
			messages.DELETE("/:id", messageHandler.DeleteMessage)
			messages.GET("/unread/count", messageHandler.GetUnreadCount)
		}

		// 用户主页与关注相关路由
		api.GET("/users/search/:query", optionalAuth, userHandler.SearchUsers)
		api.GET("/users/:username", optionalAuth, userHandler.GetUserProfile)
		api.GET("/users/:username/posts", optionalAuth, userHandler.GetUserPosts)
		api.GET("/users/:username/reels", optionalAuth, userHandler.GetUserReels)
		api.GET("/users/:username/followers", optionalAuth, userHandler.GetFollowers)
		api.GET("/users/:username/following", optionalAuth, userHandler.GetFollowing)
		api.POST("/users/:username/follow", requireAuth, userHandler.FollowUser)
		api.DELETE("/users/:username/follow", requireAuth, userHandler.UnfollowUser)
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
