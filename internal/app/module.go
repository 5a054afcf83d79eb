package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering page module.
type Module interface {
	RegisterRoutes(pages *gin.RouterGroup)
}
