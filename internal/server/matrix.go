package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func strPtr(value string) *string { return &value }

func pathID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

func bodyID(c *gin.Context, field, raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(field, "invalid_"+field, "invalid "+field))
		return 0, false
	}
	return id, true
}

func (s *Server) GetBoard(c *gin.Context) {
	board, err := s.matrixSvc.Board(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": board})
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	group, err := s.matrixSvc.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.group.create", "group", strPtr(group.ID.String()), map[string]any{"name": group.Name})
	c.JSON(http.StatusOK, gin.H{"data": group})
}

func (s *Server) ListGroups(c *gin.Context) {
	groups, err := s.matrixSvc.ListGroups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (s *Server) RenameGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	group, err := s.matrixSvc.RenameGroup(c.Request.Context(), id, req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.group.rename", "group", strPtr(group.ID.String()), map[string]any{"name": group.Name})
	c.JSON(http.StatusOK, gin.H{"data": group})
}

func (s *Server) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.matrixSvc.DeleteGroup(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.group.delete", "group", strPtr(id.String()), nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createCategoryRequest struct {
	GroupID    string `json:"group_id"`
	Name       string `json:"name"`
	SourceLink string `json:"source_link"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	groupID, ok := bodyID(c, "group_id", req.GroupID)
	if !ok {
		return
	}

	category, err := s.matrixSvc.CreateCategory(c.Request.Context(), groupID, req.Name, req.SourceLink)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.category.create", "category", strPtr(category.ID.String()), map[string]any{"name": category.Name})
	c.JSON(http.StatusOK, gin.H{"data": category})
}

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.matrixSvc.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (s *Server) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.matrixSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.category.delete", "category", strPtr(id.String()), nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createPersonRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organisation string `json:"organisation"`
	Role         string `json:"role"`
}

func (s *Server) CreatePerson(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	person, err := s.matrixSvc.CreatePerson(c.Request.Context(), req.Name, req.Email, req.Organisation, req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.person.create", "person", strPtr(person.ID.String()), map[string]any{"email": person.Email})
	c.JSON(http.StatusOK, gin.H{"data": person})
}

func (s *Server) ListPeople(c *gin.Context) {
	people, err := s.matrixSvc.ListPeople(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": people})
}

func (s *Server) DeletePerson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.matrixSvc.DeletePerson(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.person.delete", "person", strPtr(id.String()), nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createTaskRequest struct {
	CategoryID  string         `json:"category_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	categoryID, ok := bodyID(c, "category_id", req.CategoryID)
	if !ok {
		return
	}

	task, err := s.matrixSvc.CreateTask(c.Request.Context(), categoryID, req.Name, req.Description, req.Metadata)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.task.create", "task", strPtr(task.ID.String()), map[string]any{"name": task.Name})
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) ListTasks(c *gin.Context) {
	tasks, err := s.matrixSvc.ListTasks(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (s *Server) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.matrixSvc.DeleteTask(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.task.delete", "task", strPtr(id.String()), nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type allocationRequest struct {
	TaskID   string `json:"task_id"`
	PersonID string `json:"person_id"`
	IsLead   bool   `json:"is_lead"`
}

func (s *Server) CreateAllocation(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	taskID, ok := bodyID(c, "task_id", req.TaskID)
	if !ok {
		return
	}
	personID, ok := bodyID(c, "person_id", req.PersonID)
	if !ok {
		return
	}

	allocation, err := s.matrixSvc.Allocate(c.Request.Context(), taskID, personID, req.IsLead)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.allocation.create", "allocation", strPtr(allocation.ID.String()), map[string]any{
		"task_id":   taskID.String(),
		"person_id": personID.String(),
		"is_lead":   req.IsLead,
	})
	c.JSON(http.StatusOK, gin.H{"data": allocation})
}

func (s *Server) DeleteAllocation(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	taskID, ok := bodyID(c, "task_id", req.TaskID)
	if !ok {
		return
	}
	personID, ok := bodyID(c, "person_id", req.PersonID)
	if !ok {
		return
	}

	if err := s.matrixSvc.Deallocate(c.Request.Context(), taskID, personID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "matrix.allocation.delete", "allocation", nil, map[string]any{
		"task_id":   taskID.String(),
		"person_id": personID.String(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
