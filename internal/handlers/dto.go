package handlers

import (
	"time"

	"memoryjournal/internal/models"
)

// UserDTO keeps created_at as an RFC 3339 string
type UserDTO struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type pageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type pagination struct {
	Next *pageRef `json:"next,omitempty"`
	Prev *pageRef `json:"prev,omitempty"`
}

func paginate(page, limit, total int) pagination {
	var p pagination
	if page*limit < total {
		p.Next = &pageRef{Page: page + 1, Limit: limit}
	}
	if (page-1)*limit > 0 {
		p.Prev = &pageRef{Page: page - 1, Limit: limit}
	}
	return p
}

type listResponse[T any] struct {
	Count      int         `json:"count"`
	Total      int         `json:"total,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Data       []T         `json:"data"`
}
