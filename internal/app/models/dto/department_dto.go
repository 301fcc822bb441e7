package dto

import "github.com/yigit/studentrecords/internal/app/models"

// DepartmentRequest represents department create and update data
type DepartmentRequest struct {
	Code        string `json:"code" binding:"required,max=10" example:"CS"`
	Name        string `json:"name" binding:"required,max=100" example:"Computer Science"`
	Head        string `json:"head" binding:"max=100" example:"Dr. Ada Lovelace"`
	Description string `json:"description"`
}

// ToModel converts the request into a department
func (r DepartmentRequest) ToModel() *models.Department {
	return &models.Department{
		Code:        r.Code,
		Name:        r.Name,
		Head:        r.Head,
		Description: r.Description,
	}
}
