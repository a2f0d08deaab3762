package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter - 미들웨어와 라우트가 등록된 gin 엔진 생성
func NewRouter(alertHandler *AlertHandler, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(log))

	// 건강 체크 및 테스트용 기본 엔드포인트
	router.GET("/ping", Ping)
	router.GET("/", Root)
	router.GET("/openapi.json", OpenAPIDoc)

	router.POST("/webhook", alertHandler.Webhook)
	return router
}
