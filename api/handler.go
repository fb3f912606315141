package api

import (
	"github.com/fintrack/backend/db"
)

type Handler struct {
	storage   *db.Storage
	jwtSecret string
}

func NewHandler(s *db.Storage, jwtSecret string) *Handler {
	return &Handler{storage: s, jwtSecret: jwtSecret}
}
