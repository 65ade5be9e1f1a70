package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"

	"resume-parser-go/internal/agent"
	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	appLogger "resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/ratelimit"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// 配置还没加载，退回默认日志设置
		appLogger.Init(appLogger.Config{Level: "info", Format: "pretty"})
		appLogger.Fatal().Err(err).Str("path", configPath).Msg("加载配置失败")
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	variant, err := types.ParseSchemaVariant(cfg.Extractor.Schema)
	if err != nil {
		glog.Fatalf("输出模式配置无效: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 补全网关：OpenAI兼容客户端 + QPM限流代理
	qwenModel, err := agent.NewQwenChatModel(
		cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL,
		agent.WithTemperature(cfg.LLM.Temperature),
		agent.WithMaxTokens(cfg.LLM.MaxTokens),
	)
	if err != nil {
		glog.Fatalf("初始化LLM客户端失败: %v", err)
	}
	llmModel := ratelimit.NewChatModelWithRateLimit(
		qwenModel,
		cfg.LLM.QPM,
		cfg.LLM.MaxRetries,
		time.Duration(cfg.LLM.RetryWaitSeconds)*time.Second,
	)
	glog.Info("补全网关初始化成功")

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		glog.Fatalf("创建Eino PDF提取器失败: %v", err)
	}

	fieldExtractor := parser.NewLLMFieldExtractor(llmModel, variant,
		parser.WithMaxRetries(cfg.LLM.MaxRetries),
		parser.WithRetryDelay(time.Duration(cfg.LLM.RetryWaitSeconds)*time.Second),
		parser.WithCallTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
	)

	resumeProcessor := processor.NewResumeProcessor(
		&processor.Components{
			PDFExtractor:   pdfExtractor,
			Preprocessor:   parser.NewTextPreprocessor(cfg.Extractor.MaxChars),
			FieldExtractor: fieldExtractor,
		},
		&processor.Settings{
			Variant: variant,
			Debug:   cfg.Logger.Level == "debug",
		},
	)
	glog.Infof("解析流水线初始化成功，输出模式: %s", variant)

	var fileStore processor.FileStore
	if storageManager.MinIO != nil {
		fileStore = storageManager.MinIO
	}
	var dedupeIndex processor.DedupeIndex
	if storageManager.Redis != nil {
		dedupeIndex = storageManager.Redis
	}
	resumeHandler := handler.NewResumeHandler(cfg, fileStore, dedupeIndex, resumeProcessor)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		c = appLogger.WithContext(c)
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, resumeHandler, cfg.Server.APIKey)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并把hertz的日志路由到同一输出
func initLogger(cfg *config.Config) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	hertzCompatibleLogger := hertzadapter.From(appLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
