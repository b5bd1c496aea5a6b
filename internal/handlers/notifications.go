package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/services"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/utils"
	"github.com/gin-gonic/gin"
)

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	CriticalCount int64                 `json:"critical_count"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

// GetNotifications returns the branch-scoped list, newest first.
func GetNotifications(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	result, err := notificationStore.List(ctx.Request.Context(), admin.BranchID, limit, offset)

	if err != nil {
		log.Printf("Failed to list notifications for branch %s: %v", admin.BranchID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	ctx.JSON(http.StatusOK, NotificationListResponse{
		Notifications: result.Notifications,
		UnreadCount:   result.UnreadCount,
		CriticalCount: result.CriticalCount,
		Page:          page,
		Limit:         limit,
	})
}

func MarkNotificationRead(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	id := ctx.Param("id")

	notification, err := notificationStore.MarkRead(ctx.Request.Context(), admin.BranchID, id)

	if err != nil {
		respondUpdateError(ctx, admin.BranchID, id, "mark read", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	count, err := notificationStore.MarkAllRead(ctx.Request.Context(), admin.BranchID)

	if err != nil {
		log.Printf("Failed to mark all read for branch %s: %v", admin.BranchID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "updated": count})
}

func AcknowledgeNotification(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	id := ctx.Param("id")

	notification, err := notificationStore.Acknowledge(ctx.Request.Context(), admin.BranchID, id, admin.ID)

	if err != nil {
		respondUpdateError(ctx, admin.BranchID, id, "acknowledge", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

func ResolveNotification(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	id := ctx.Param("id")

	notification, err := notificationStore.Resolve(ctx.Request.Context(), admin.BranchID, id, admin.ID)

	if err != nil {
		respondUpdateError(ctx, admin.BranchID, id, "resolve", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

func respondUpdateError(ctx *gin.Context, branchID, id, action string, err error) {
	if errors.Is(err, services.ErrNotificationNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	log.Printf("Failed to %s notification %s (branch %s): %v", action, id, branchID, err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
}
