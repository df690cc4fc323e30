package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/worktime/internal/schedule"
	"github.com/username/worktime/internal/worktime"
)

type addItemRequest struct {
	Date  string   `json:"date" binding:"required"`
	Title string   `json:"title"`
	Link  string   `json:"link"`
	Hours *float64 `json:"hours" binding:"required"`
}

type updateItemRequest struct {
	Title *string  `json:"title"`
	Link  *string  `json:"link"`
	Hours *float64 `json:"hours"`
}

// respondError maps service errors onto HTTP statuses
func (s *Server) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, worktime.ErrInvalidHours),
		errors.Is(err, worktime.ErrInvalidDate),
		errors.Is(err, worktime.ErrInvalidWeekKey),
		errors.Is(err, worktime.ErrDayNotInWeek):
		status = http.StatusBadRequest
	case errors.Is(err, worktime.ErrItemNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(message, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message, "message": err.Error()})
}

func (s *Server) listWeeks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"weeks": s.service.Weeks(c.Request.Context())})
}

func (s *Server) getWeek(c *gin.Context) {
	summary, err := s.service.WeekSummary(c.Request.Context(), c.Param("weekKey"))
	if err != nil {
		s.respondError(c, "Failed to load week", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) deleteWeek(c *gin.Context) {
	if err := s.service.DeleteWeek(c.Request.Context(), c.Param("weekKey")); err != nil {
		s.respondError(c, "Failed to delete week", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearWeeks(c *gin.Context) {
	if err := s.service.ClearAll(c.Request.Context()); err != nil {
		s.respondError(c, "Failed to clear saved data", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addItem(c *gin.Context) {
	weekKey := c.Param("weekKey")
	if _, err := worktime.ParseWeekKey(weekKey); err != nil {
		s.respondError(c, "Invalid week", err)
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	key, err := worktime.WeekKeyFor(req.Date)
	if err != nil {
		s.respondError(c, "Invalid date", err)
		return
	}
	if key != weekKey {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date is outside the week", "message": req.Date + " belongs to week " + key})
		return
	}

	item, err := s.service.AddItem(c.Request.Context(), req.Date, schedule.WorkItem{
		Title: req.Title,
		Link:  req.Link,
		Hours: *req.Hours,
	})
	if err != nil {
		s.respondError(c, "Failed to add work item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	item, err := s.service.UpdateItem(c.Request.Context(), c.Param("weekKey"), c.Param("id"), worktime.ItemUpdate{
		Title: req.Title,
		Link:  req.Link,
		Hours: req.Hours,
	})
	if err != nil {
		s.respondError(c, "Failed to update work item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) removeItem(c *gin.Context) {
	if err := s.service.RemoveItem(c.Request.Context(), c.Param("weekKey"), c.Param("id")); err != nil {
		s.respondError(c, "Failed to remove work item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) cleanup(c *gin.Context) {
	removed, err := s.service.Cleanup(c.Request.Context())
	if err != nil {
		s.respondError(c, "Failed to clean old data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) getHoliday(c *gin.Context) {
	date := c.Param("date")
	info := s.calendar.DayInfo(date)
	if info == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": date})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     info.Date,
		"type":     info.Type.String(),
		"isOffDay": info.IsOffDay,
		"name":     info.Name,
	})
}

func (s *Server) parseLink(c *gin.Context) {
	link := c.Query("url")
	title, ok := worktime.ParseYunxiaoLink(link)

	resp := gin.H{
		"url":   link,
		"valid": worktime.IsValidYunxiaoLink(link),
		"title": nil,
	}
	if ok {
		resp["title"] = title
	}
	c.JSON(http.StatusOK, resp)
}
