package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/prompts"
)

type systemPromptResponse struct {
	Prompt    string `json:"prompt"`
	IsDefault bool   `json:"isDefault"`
}

func (s *Server) handleGetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	setting, err := s.settings.GetSetting(r.Context(), entity.SettingSystemPrompt)
	if err != nil {
		s.logger.Error("failed to load system prompt", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if setting == nil || setting.Value == "" {
		writeJSON(w, http.StatusOK, systemPromptResponse{Prompt: prompts.DefaultSystemPrompt, IsDefault: true})
		return
	}
	writeJSON(w, http.StatusOK, systemPromptResponse{Prompt: setting.Value})
}

func (s *Server) handleUpdateSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updatedBy := ""
	if claims := claimsFrom(r.Context()); claims != nil {
		updatedBy = claims.Subject
	}

	setting, err := s.settings.UpsertSetting(r.Context(), entity.SettingSystemPrompt, req.Prompt, updatedBy)
	if err != nil {
		s.logger.Error("failed to save system prompt", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

type createUserRequest struct {
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     entity.UserRole `json:"role"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := s.users.CreateUser(r.Context(), &entity.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Email    *string          `json:"email"`
	Username *string          `json:"username"`
	Password *string          `json:"password"`
	Role     *entity.UserRole `json:"role"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := output.UpdateUser{
		Email:    req.Email,
		Username: req.Username,
		Role:     req.Role,
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		hashed := string(hash)
		update.PasswordHash = &hashed
	}

	user, err := s.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		s.logger.Error("failed to update user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("failed to delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createDriverRequest struct {
	Name        string `json:"name"`
	VehicleName string `json:"vehicleName"`
	Phone       string `json:"phone"`
}

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.drivers.ListDrivers(r.Context())
	if err != nil {
		s.logger.Error("failed to list drivers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (s *Server) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.VehicleName == "" {
		writeError(w, http.StatusBadRequest, "name and vehicleName are required")
		return
	}

	driver, err := s.drivers.CreateDriver(r.Context(), &entity.Driver{
		Name:        req.Name,
		VehicleName: req.VehicleName,
		Phone:       req.Phone,
	})
	if err != nil {
		s.logger.Error("failed to create driver", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, driver)
}

func (s *Server) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		VehicleName *string `json:"vehicleName"`
		Phone       *string `json:"phone"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	driver, err := s.drivers.UpdateDriver(r.Context(), chi.URLParam(r, "id"), output.UpdateDriver{
		Name:        req.Name,
		VehicleName: req.VehicleName,
		Phone:       req.Phone,
	})
	if err != nil {
		s.logger.Error("failed to update driver", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if driver == nil {
		writeError(w, http.StatusNotFound, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

func (s *Server) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := s.drivers.DeleteDriver(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("failed to delete driver", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
