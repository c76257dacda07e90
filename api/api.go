package api

import (
	"github.com/candleworks/fulfil"
	"github.com/candleworks/fulfil/api/middleware"
	"github.com/candleworks/fulfil/config"
	"github.com/gin-gonic/gin"
)

type Api struct {
	fulfil *fulfil.Fulfil
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/shipping/quotes", a.GetShippingQuote)
	router.POST("/shipping/labels", a.IssueLabel)

	router.POST("/orders", a.CreateOrder)
	router.GET("/orders/:id", a.GetOrder)
	router.GET("/orders", a.GetAllOrders)
	return a.router
}

func NewAPI(f *fulfil.Fulfil) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{fulfil: f, router: r}
}
