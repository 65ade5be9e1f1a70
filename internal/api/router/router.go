package router

import (
	"context"
	"crypto/subtle"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/constants"
)

// RegisterRoutes 注册 API 路由。apiKey非空时启用Bearer鉴权。
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKey string) {
	api := h.Group("/api/v1")

	if apiKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1, nil
			}),
		))
	}

	api.POST("/resume/parse", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "仅支持PDF文件"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		fileBytes, err := io.ReadAll(file)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败"})
			return
		}

		resp, err := resumeHandler.HandleResumeParse(c, fileBytes, fileHeader.Filename)
		if err != nil {
			// 处理失败时仍返回空壳记录，error说明在data.error里
			ctx.JSON(consts.StatusInternalServerError, resp)
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resume/:submission_uuid", func(c context.Context, ctx *app.RequestContext) {
		submissionUUID := ctx.Param("submission_uuid")
		if submissionUUID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少submission_uuid"})
			return
		}

		resp, err := resumeHandler.HandleStoredResume(c, submissionUUID)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, resp)
			return
		}

		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{
			"status":  "healthy",
			"service": constants.ServiceName,
		})
	})
}
