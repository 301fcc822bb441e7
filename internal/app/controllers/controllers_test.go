package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// Stubs embed the service interface and override only what a test touches.

type stubDepartmentService struct {
	services.DepartmentService
	created *models.Department
	deleted int64
}

func (s *stubDepartmentService) CreateDepartment(_ context.Context, d *models.Department) error {
	if d.Code == "CS" {
		return apperrors.ErrDepartmentAlreadyExists
	}
	d.ID = 5
	s.created = d
	return nil
}

func (s *stubDepartmentService) GetDepartmentByID(_ context.Context, id int64) (*models.Department, error) {
	if id != 5 {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return &models.Department{ID: 5, Code: "EE", Name: "Electrical"}, nil
}

func (s *stubDepartmentService) DeleteDepartment(_ context.Context, id int64) error {
	s.deleted = id
	return nil
}

type stubFeeService struct {
	services.FeeService
	filter models.FeeFilter
}

func (s *stubFeeService) ListFees(_ context.Context, filter models.FeeFilter) ([]models.Fee, int64, error) {
	s.filter = filter
	return []models.Fee{{ID: 1, Amount: 100, Status: models.FeePending}}, 31, nil
}

type stubAttendanceService struct {
	services.AttendanceService
	seen int
}

func (s *stubAttendanceService) Record(_ context.Context, a *models.Attendance, _ *int64) (bool, error) {
	s.seen++
	a.ID = 9
	return s.seen == 1, nil
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.ContextWithFallback = true
	return r
}

func TestDepartmentController(t *testing.T) {
	svc := &stubDepartmentService{}
	c := NewDepartmentController(svc)
	r := newEngine()
	r.POST("/departments", c.CreateDepartment)
	r.GET("/departments/:id", c.GetDepartmentByID)
	r.DELETE("/departments/:id", c.DeleteDepartment)

	w := do(r, http.MethodPost, "/departments", `{"code":"ee","name":"Electrical"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Success bool              `json:"success"`
		Data    models.Department `json:"data"`
	}
	decode(t, w, &created)
	assert.True(t, created.Success)
	assert.Equal(t, int64(5), created.Data.ID)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/departments", `{"code":"CS","name":"Computer Science"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/departments", `{"name":"No code"}`).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/departments/5", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/departments/6", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/departments/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/departments/-1", "").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/departments/5", "").Code)
	assert.Equal(t, int64(5), svc.deleted)
}

func TestListFeesPagination(t *testing.T) {
	svc := &stubFeeService{}
	c := NewFeeController(svc, 15)
	r := newEngine()
	r.GET("/fees", c.ListFees)

	w := do(r, http.MethodGet, "/fees?status=ovd&student=4&q=+ada+&page=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.FeeOverdue, svc.filter.Status)
	require.NotNil(t, svc.filter.StudentID)
	assert.Equal(t, int64(4), *svc.filter.StudentID)
	assert.Equal(t, "ada", svc.filter.Query)
	assert.Equal(t, 15, svc.filter.PageSize)

	var body struct {
		Data struct {
			Items      []json.RawMessage `json:"items"`
			Pagination struct {
				CurrentPage int   `json:"current_page"`
				TotalPages  int   `json:"total_pages"`
				TotalItems  int64 `json:"total_items"`
			} `json:"pagination"`
		} `json:"data"`
	}
	decode(t, w, &body)
	assert.Len(t, body.Data.Items, 1)
	assert.Equal(t, 3, body.Data.Pagination.CurrentPage)
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)
	assert.Equal(t, int64(31), body.Data.Pagination.TotalItems)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/fees?student=x", "").Code)
}

func TestRecordAttendanceStatus(t *testing.T) {
	svc := &stubAttendanceService{}
	c := NewAttendanceController(svc)
	r := newEngine()
	r.POST("/attendance", c.RecordAttendance)

	body := `{"student_id":1,"course_id":2,"date":"2025-06-10","status":"P"}`
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/attendance", body).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/attendance", body).Code)

	bad := `{"student_id":1,"course_id":2,"date":"10/06/2025","status":"P"}`
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/attendance", bad).Code)
	unknown := `{"student_id":1,"course_id":2,"date":"2025-06-10","status":"Z"}`
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/attendance", unknown).Code)
	assert.Equal(t, 2, svc.seen)
}
