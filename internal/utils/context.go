package utils

import (
	"fmt"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/middleware"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentAdmin(ctx *gin.Context) (middleware.AuthenticatedAdmin, error) {
	admin, exists := ctx.Get(types.ContextAdminKey)

	if !exists {
		return middleware.AuthenticatedAdmin{}, fmt.Errorf("Admin not authenticated")
	}

	authenticatedAdmin, ok := admin.(middleware.AuthenticatedAdmin)

	if !ok {
		return middleware.AuthenticatedAdmin{}, fmt.Errorf("Invalid admin type in context")
	}

	return authenticatedAdmin, nil
}
