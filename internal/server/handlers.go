package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"tasker/internal/persist"
	"tasker/internal/store"
	"tasker/internal/task"
)

type handler struct {
	st  *store.Store
	log logr.Logger
}

// errorStatus maps an error to its HTTP status. Backend failures, including
// service.ErrAuth, are reported as 502.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrTitleRequired),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidSort),
		errors.Is(err, task.ErrInvalidDate),
		errors.Is(err, store.ErrAmbiguous):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (h *handler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(err, "request failed", "method", c.Request.Method, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// listTasks returns the filtered view. Query parameters override the stored
// filters for this request only.
func (h *handler) listTasks(c *gin.Context) {
	opts := h.st.Filters()

	if v, ok := c.GetQuery("status"); ok {
		status, err := task.ParseStatusFilter(v)
		if err != nil {
			h.fail(c, err)
			return
		}
		opts.Status = status
	}
	if v, ok := c.GetQuery("search"); ok {
		opts.Search = v
	}
	if v, ok := c.GetQuery("sortBy"); ok {
		by, err := task.ParseSortOption(v)
		if err != nil {
			h.fail(c, err)
			return
		}
		opts.SortBy = by
	}
	if v := c.Query("from"); v != "" {
		start, err := task.ParseDate(v, false)
		if err != nil {
			h.fail(c, err)
			return
		}
		opts.DateRange.Start = &start
	}
	if v := c.Query("to"); v != "" {
		end, err := task.ParseDate(v, true)
		if err != nil {
			h.fail(c, err)
			return
		}
		opts.DateRange.End = &end
	}

	items := h.st.FilteredBy(opts)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(h.st.Tasks())})
}

func (h *handler) getTask(c *gin.Context) {
	t, err := h.st.Lookup(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) createTask(c *gin.Context) {
	var req task.FormData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status != "" {
		status, err := task.ParseStatus(string(req.Status))
		if err != nil {
			h.fail(c, err)
			return
		}
		req.Status = status
	}

	t, err := h.st.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handler) updateTask(c *gin.Context) {
	var req task.Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Empty() {
		badRequest(c, "nothing to update")
		return
	}
	if req.Status != nil {
		status, err := task.ParseStatus(string(*req.Status))
		if err != nil {
			h.fail(c, err)
			return
		}
		req.Status = &status
	}

	target, err := h.st.Lookup(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.st.Update(c.Request.Context(), target.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) deleteTask(c *gin.Context) {
	target, err := h.st.Lookup(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.st.Delete(c.Request.Context(), target.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// refresh reloads the task list from the backend.
func (h *handler) refresh(c *gin.Context) {
	h.st.Initialize(c.Request.Context())
	if msg := h.st.Err(); msg != "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.st.Filtered(), "total": len(h.st.Tasks())})
}

func (h *handler) getFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.Filters())
}

func (h *handler) putFilters(c *gin.Context) {
	var req task.FilterOptions
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.st.SetFilters(req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.st.Filters())
}

func (h *handler) clearFilters(c *gin.Context) {
	h.st.ClearFilters()
	c.JSON(http.StatusOK, h.st.Filters())
}

func (h *handler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.Preferences())
}

func (h *handler) putPreferences(c *gin.Context) {
	var req persist.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.st.SetDarkMode(req.DarkMode)
	c.JSON(http.StatusOK, h.st.Preferences())
}

func (h *handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"loading": h.st.Loading(), "error": h.st.Err()})
}

func (h *handler) clearError(c *gin.Context) {
	h.st.ClearError()
	c.Status(http.StatusNoContent)
}
