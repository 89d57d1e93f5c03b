package api

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hoshinonyaruko/stgy-share/codec"
	"github.com/hoshinonyaruko/stgy-share/config"
	"github.com/hoshinonyaruko/stgy-share/sqlite"
	"github.com/hoshinonyaruko/stgy-share/structs"
)

// NewRouter 组装 HTTP 服务：编解码接口是无状态的，攻略板库接口
// 挂在本地 sqlite 上。
func NewRouter(db *sql.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// 默认不信任任何代理头，ClientIP 一律取对端地址；部署在反代后面
	// 时通过配置打开。
	if !config.Get().TrustProxy {
		if err := r.SetTrustedProxies(nil); err != nil {
			logger.Warn("set trusted proxies failed", zap.Error(err))
		}
	}

	r.POST("/encode", EncodeHandler(logger))
	r.GET("/decode", DecodeHandler(logger))

	r.POST("/boards", SaveBoardHandler(db, logger))
	r.GET("/boards", ListBoardsHandler(db, logger))
	r.GET("/boards/:slug", GetBoardHandler(db, logger))
	r.DELETE("/boards/:slug", DeleteBoardHandler(db, logger))
	return r
}

// statusForCodecError maps codec errors onto HTTP statuses. Codes that
// fail structural checks are the caller's bad input; boards that the
// codec refuses to serialize are semantically unprocessable.
func statusForCodecError(err error) int {
	switch {
	case errors.Is(err, codec.ErrUnsupportedObjectType),
		errors.Is(err, codec.ErrTooManyObjects):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// EncodeHandler 把 JSON 攻略板编码成分享码。
func EncodeHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var board structs.Board
		if err := c.ShouldBindJSON(&board); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board json"})
			return
		}
		code, err := codec.Encode(&board)
		if err != nil {
			logger.Info("encode rejected", zap.Error(err))
			c.JSON(statusForCodecError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": code})
	}
}

// DecodeHandler 把分享码还原成攻略板。
func DecodeHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing code parameter"})
			return
		}
		board, err := codec.Decode(code)
		if err != nil {
			logger.Info("decode rejected", zap.Error(err))
			c.JSON(statusForCodecError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, board)
	}
}

type saveBoardRequest struct {
	Code string `json:"code"`
}

// SaveBoardHandler 校验分享码后存入本地库，返回生成的 slug。
func SaveBoardHandler(db *sql.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveBoardRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
			return
		}
		board, err := codec.Decode(req.Code)
		if err != nil {
			c.JSON(statusForCodecError(err), gin.H{"error": err.Error()})
			return
		}
		// 入库前重编码，保证库里的码是规范形。
		canonical, err := codec.Encode(board)
		if err != nil {
			c.JSON(statusForCodecError(err), gin.H{"error": err.Error()})
			return
		}

		rec := &sqlite.BoardRecord{
			Slug: newSlug(),
			Name: board.Name,
			Code: canonical,
		}
		if err := sqlite.SaveBoard(db, rec); err != nil {
			logger.Error("save board failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		logger.Info("board saved",
			zap.String("slug", rec.Slug),
			zap.String("name", rec.Name),
			zap.String("client", c.ClientIP()))
		c.JSON(http.StatusCreated, rec)
	}
}

// GetBoardHandler 按 slug 取回记录，并附带解码后的攻略板。
func GetBoardHandler(db *sql.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := sqlite.GetBoard(db, c.Param("slug"))
		if errors.Is(err, sqlite.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
			return
		}
		if err != nil {
			logger.Error("get board failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		board, err := codec.Decode(rec.Code)
		if err != nil {
			// 库里的码解不开说明数据已损坏。
			logger.Error("stored code no longer decodes", zap.String("slug", rec.Slug), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stored board corrupted"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"record": rec, "board": board})
	}
}

// ListBoardsHandler 列出最近保存的攻略板。
func ListBoardsHandler(db *sql.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := sqlite.ListBoards(db, config.Get().ListLimit)
		if err != nil {
			logger.Error("list boards failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		if records == nil {
			records = []sqlite.BoardRecord{}
		}
		c.JSON(http.StatusOK, records)
	}
}

// DeleteBoardHandler 删除一条记录。
func DeleteBoardHandler(db *sql.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := sqlite.DeleteBoard(db, c.Param("slug"))
		if errors.Is(err, sqlite.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
			return
		}
		if err != nil {
			logger.Error("delete board failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func newSlug() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand 不可用时没有退路，直接放弃。
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
