package users

import (
	"errors"
	"log/slog"
	"net/http"

	badgeService "github.com/princekumarofficial/marketplace-service/internal/badges"
	"github.com/princekumarofficial/marketplace-service/internal/http/middleware"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
	"github.com/princekumarofficial/marketplace-service/internal/utils/jwt"
	"github.com/princekumarofficial/marketplace-service/internal/utils/password"
	"github.com/princekumarofficial/marketplace-service/internal/utils/response"
)

// SignUp handles user registration
// @Summary Register a new user
// @Description Register a new user or NGO account
// @Tags users
// @Accept json
// @Produce json
// @Param user body users.SignUpRequest true "User registration details"
// @Success 201 {object} map[string]string "User created successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 409 {object} response.Response "Email already registered"
// @Failure 500 {object} response.Response "Internal server error"
// @Router /signup [post]
func SignUp(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signupReq users.SignUpRequest
		if !response.DecodeValid(w, r, &signupReq) {
			return
		}

		hashedPassword, err := password.HashPassword(signupReq.Password)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash password")))
			return
		}

		role := signupReq.Role
		if role == "" {
			role = users.RoleUser
		}

		userID, err := store.CreateUser(r.Context(), signupReq.Email, hashedPassword, signupReq.Name, role)
		if errors.Is(err, storage.ErrEmailTaken) {
			response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to create user", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create user")))
			return
		}
		slog.Info("User created", slog.String("user_id", userID), slog.String("role", string(role)))

		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"id": userID,
		})
	}
}

// Login handles user authentication
// @Summary Authenticate a user
// @Description Authenticate a user and return JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param user body users.SignInRequest true "User login details"
// @Success 200 {object} map[string]string "User authenticated successfully with token"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Router /login [post]
func Login(store storage.Storage, JWTSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signinReq users.SignInRequest
		if !response.DecodeValid(w, r, &signinReq) {
			return
		}

		userID, hashedPassword, err := store.GetUserByEmail(r.Context(), signinReq.Email)
		if err != nil {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid email or password")))
			return
		}

		if !password.CheckPasswordHash(signinReq.Password, hashedPassword) {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid email or password")))
			return
		}

		token, err := jwt.CreateToken(userID, JWTSecret)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate token")))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"user_id": userID,
			"token":   token,
		})
	}
}

// Me returns the authenticated user's record
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} users.User "User record"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "User not found"
// @Security BearerAuth
// @Router /me [get]
func Me(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, store)
		if !ok {
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("User fetched successfully", user))
	}
}

// UpdateProfile commits profile fields, typically the public URL of a
// photo uploaded through a ticket
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body users.ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} users.ProfileUpdateResponse "Updated user and newly unlocked badges"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "User not found"
// @Security BearerAuth
// @Router /me/profile [patch]
func UpdateProfile(store storage.Storage, refresher badgeService.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var req users.ProfileUpdateRequest
		if !response.DecodeValid(w, r, &req) {
			return
		}

		err := store.UpdateProfile(r.Context(), userID, req)
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("Failed to update profile", slog.String("error", err.Error()), slog.String("user_id", userID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update profile")))
			return
		}

		newBadges := badgeService.NewlyUnlocked(r.Context(), refresher, userID)

		user, ok := currentUser(w, r, store)
		if !ok {
			return
		}

		response.WriteJSON(w, http.StatusOK, users.ProfileUpdateResponse{
			User:      user,
			NewBadges: newBadges,
		})
	}
}

// MyBadges lists every badge and whether the user holds it
// @Summary List badges
// @Tags users
// @Produce json
// @Success 200 {array} users.BadgeStatus "Badge table with unlock state"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /me/badges [get]
func MyBadges(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, store)
		if !ok {
			return
		}

		statuses := make([]users.BadgeStatus, 0, len(badges.Rules))
		for _, rule := range badges.Rules {
			statuses = append(statuses, users.BadgeStatus{
				Key:      rule.Key,
				Field:    rule.Field,
				Unlocked: user.Counters.HasBadge(rule.Key),
			})
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Badges fetched successfully", statuses))
	}
}

func currentUser(w http.ResponseWriter, r *http.Request, store storage.Storage) (users.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
		return users.User{}, false
	}

	user, err := store.GetUser(r.Context(), userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return users.User{}, false
	}
	if err != nil {
		slog.Error("Failed to get user", slog.String("error", err.Error()), slog.String("user_id", userID))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to get user")))
		return users.User{}, false
	}

	return user, true
}
