package middleware

import (
	"net/http"
	"strings"

	"github.com/Pinoccchio/InCloud-WEB-sub003/db"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/auth"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthenticatedAdmin struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	BranchID string `json:"branch_id"`
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})

			return
		}

		tokenString := parts[1]

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		adminID, ok := claims["admin_id"].(string)

		if !ok || adminID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin ID in token claims"})
			return
		}

		var admin models.Admin

		if err := db.DB.Where("id = ? AND is_active = ?", adminID, true).First(&admin).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin not found"})
			return
		}

		ctx.Set(types.ContextAdminKey, AuthenticatedAdmin{
			ID:       admin.ID,
			Name:     admin.Name,
			Email:    admin.Email,
			BranchID: admin.BranchID,
		})
		ctx.Next()
	}
}
