package transport

import (
	"errors"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

const avatarField = "avatar"

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.svc.Auth.SignIn(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setToken(w, session.Token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful", "token": session.Token})
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.svc.Auth.SignUp(r.Context(), domain.SignUp{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setToken(w, session.Token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User created successfully", "token": session.Token})
}

func (h *handler) signOut(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, "Logout successful")
}

func (h *handler) setToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	profile, err := h.svc.Profiles.Get(r.Context(), *user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(profile))
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.svc.Profiles.Update(r.Context(), *user, domain.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"profile": toProfileDTO(profile),
	})
}

// updateAvatar accepts a multipart upload. The body limit leaves room for the form
// envelope so that an oversized image is reported by the size check, not the reader.
func (h *handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxAvatarBytes+maxJSONBody)
	if err := r.ParseMultipartForm(h.opts.MaxAvatarBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "Image size must not exceed 2 MB")
			return
		}
		writeError(w, http.StatusBadRequest, "No avatar file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(avatarField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No avatar file provided")
		return
	}
	defer func() { _ = file.Close() }()

	profile, err := h.svc.Profiles.UpdateAvatar(r.Context(), *user, domain.Avatar{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Avatar updated successfully",
		"avatar":  toProfileDTO(profile).Avatar,
	})
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	err := h.svc.Auth.ChangePassword(r.Context(), user.ID, domain.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeMessage(w, "Password updated successfully")
}
