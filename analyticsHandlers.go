package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/gin-gonic/gin"
)

// deriveProficienciesHandler recomputes every (worker, step)
// proficiency level from the full production history. Takes no body.
func deriveProficienciesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		pairs, err := models.DeriveProficiencies(c.Request.Context())
		if err != nil {
			config.LogError(logger, "analyticsHandlers.go", "deriveProficienciesHandler", "DeriveProficiencies", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to derive proficiencies"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"pairsUpdated": pairs,
		})
	}
}

func completeTaskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req models.TaskCompletionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.WorkerId <= 0 && req.WorkerName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "workerId or workerName is required"})
			return
		}

		record, err := models.CompleteTask(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "worker or step not found"})
				return
			}
			config.LogError(logger, "analyticsHandlers.go", "completeTaskHandler", "CompleteTask", req, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"record":  record,
		})
	}
}

func workerPerformanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		workerId, err := strconv.Atoi(c.Query("workerId"))
		if err != nil || workerId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "workerId is required"})
			return
		}

		rows, err := models.GetWorkerPerformance(c.Request.Context(), workerId)
		if err != nil {
			config.LogError(logger, "analyticsHandlers.go", "workerPerformanceHandler", "GetWorkerPerformance", workerId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load performance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"performance": rows,
		})
	}
}
