package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/store"
	"github.com/pawmart/pawmart/pkg/models"
)

type signupRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
}

// Signup registers a new account.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondResult(w, http.StatusBadRequest, false, "请求体不合法", nil)
		return
	}
	if req.PhoneNumber == "" || req.Password == "" || req.Name == "" {
		respondResult(w, http.StatusBadRequest, false, "手机号、密码和昵称为必填项", nil)
		return
	}

	account := &models.Account{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Name:        req.Name,
		AvatarURL:   req.AvatarURL,
	}
	if err := h.Store.CreateAccount(r.Context(), account); err != nil {
		if errors.Is(err, store.ErrDuplicatePhone) {
			respondResult(w, http.StatusConflict, false, "该手机号已被注册", nil)
			return
		}
		log.Error().Err(err).Msg("signup failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器错误", nil)
		return
	}

	respondResult(w, http.StatusCreated, true, "账号创建成功", map[string]any{
		"accountId": account.ID,
	})
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Login verifies credentials and issues a session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondResult(w, http.StatusBadRequest, false, "请求体不合法", nil)
		return
	}

	account, err := h.Store.GetAccountByPhone(r.Context(), req.PhoneNumber)
	if err != nil || account.Password != req.Password {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Msg("login lookup failed")
			respondResult(w, http.StatusInternalServerError, false, "服务器错误", nil)
			return
		}
		respondResult(w, http.StatusUnauthorized, false, "用户名或密码错误！", nil)
		return
	}

	token, err := h.Auth.Issue(account.ID)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器错误", nil)
		return
	}

	respondResult(w, http.StatusOK, true, "登录成功", map[string]any{
		"id":           account.ID,
		"phone_number": account.PhoneNumber,
		"name":         account.Name,
		"avatar_url":   account.AvatarURL,
		"token":        token,
	})
}

// UserInfo returns the authenticated account's profile projection.
func (h *Handlers) UserInfo(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	account, err := h.Store.GetAccount(r.Context(), ac.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondResult(w, http.StatusNotFound, false, "用户不存在", nil)
			return
		}
		log.Error().Err(err).Int64("user_id", ac.UserID).Msg("userinfo lookup failed")
		respondResult(w, http.StatusInternalServerError, false, "服务器内部错误", nil)
		return
	}

	respondResult(w, http.StatusOK, true, "获取用户信息成功", map[string]any{
		"name":      account.Name,
		"avatarUrl": account.AvatarURL,
	})
}

// Logout exists for client symmetry; tokens expire on their own and no
// server-side session state is kept.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	respondResult(w, http.StatusOK, true, "退出成功", nil)
}
