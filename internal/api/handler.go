package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"overtime/internal/config"
	"overtime/internal/importer"
	"overtime/internal/service/overtime"
	"overtime/internal/store"
)

// Handler API 处理器
type Handler struct {
	cfg         *config.AppConfig
	engine      *overtime.Engine
	store       *store.Store // 可为 nil，历史接口返回空
	coordinator *importer.Coordinator
	dataDir     string
	downloads   *downloadStore
	logger      *zap.Logger
}

// NewHandler 创建 API 处理器，dataDir 下的 uploads / exports 用于存放上传文件与结果
func NewHandler(cfg *config.AppConfig, engine *overtime.Engine, st *store.Store, dataDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:         cfg,
		engine:      engine,
		store:       st,
		coordinator: importer.NewCoordinator(cfg.Sheet, engine, st, logger),
		dataDir:     dataDir,
		downloads:   newDownloadStore(),
		logger:      logger,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	// 当前规则
	router.GET("/rules", h.GetRules)

	// 加班计算
	router.POST("/overtime", h.Compute)
	router.POST("/overtime/stream", h.ComputeStream)
	router.GET("/download/:token", h.Download)

	// 计算历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)
}
