package handlers

import (
	"log"
	"net/http"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/utils"
	"github.com/gin-gonic/gin"
)

type GenerateAlertsResponse struct {
	Success          bool           `json:"success"`
	Message          string         `json:"message"`
	LowStockAlerts   int            `json:"lowStockAlerts"`
	ExpirationAlerts int            `json:"expirationAlerts"`
	TotalGenerated   int            `json:"totalGenerated"`
	Breakdown        map[string]int `json:"breakdown"`
}

type GenerationStatusResponse struct {
	Success        bool     `json:"success"`
	ActiveRules    int      `json:"activeRules"`
	LastGenerated  string   `json:"lastGenerated"`
	AvailableTypes []string `json:"availableTypes"`
}

// GenerateAlerts runs one full evaluation + dedup + persist cycle for the
// admin's branch. Safe to re-run: an unchanged snapshot generates nothing.
func GenerateAlerts(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	result, err := alertGenerator.Generate(ctx.Request.Context(), admin.BranchID)

	if err != nil {
		log.Printf("Alert generation failed for branch %s: %v", admin.BranchID, err)
		ctx.JSON(http.StatusInternalServerError, GenerateAlertsResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, GenerateAlertsResponse{
		Success:          true,
		Message:          "Alert generation completed",
		LowStockAlerts:   result.LowStockAlerts,
		ExpirationAlerts: result.ExpirationAlerts,
		TotalGenerated:   result.TotalGenerated,
		Breakdown:        result.Breakdown,
	})
}

// GenerationStatus is the probe behind GET /alerts/generate.
func GenerationStatus(ctx *gin.Context) {
	admin, err := utils.GetCurrentAdmin(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not authenticated"})
		return
	}

	status, err := alertGenerator.Status(ctx.Request.Context(), admin.BranchID)

	if err != nil {
		log.Printf("Generation status failed for branch %s: %v", admin.BranchID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read generation status"})
		return
	}

	ctx.JSON(http.StatusOK, GenerationStatusResponse{
		Success:        true,
		ActiveRules:    status.ActiveRules,
		LastGenerated:  status.LastGenerated,
		AvailableTypes: status.AvailableTypes,
	})
}
