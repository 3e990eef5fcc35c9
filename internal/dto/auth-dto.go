package dto

import "shift-scheduler/internal/entities"

type LoginDTO struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponseDTO struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	User        entities.User `json:"user"`
	Role        entities.Role `json:"role"`
}
