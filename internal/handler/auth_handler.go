package handler

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-companion-api/internal/api"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/model"
	"health-companion-api/internal/store"
)

func (h *Handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if len(req.Password) < 8 {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	u := &model.User{
		ID:           h.newID(),
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := h.store.CreateUser(ctx, u); err != nil {
		// dup email, but don't reveal that
		if errors.Is(err, store.ErrDuplicate) {
			return nil, status.Error(codes.AlreadyExists, "registration failed")
		}
		return nil, internal(err)
	}

	tok, err := h.issuer.Issue(u.ID)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &api.RegisterResponse{UserID: u.ID, Token: tok}, nil
}

func (h *Handler) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}

	u, err := h.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, internal(err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := h.issuer.Issue(u.ID)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &api.LoginResponse{UserID: u.ID, Token: tok, Name: u.Name}, nil
}
