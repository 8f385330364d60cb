package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/antoniovieira1/api-solicitacao-servico/config"
	"github.com/antoniovieira1/api-solicitacao-servico/middleware"
	"github.com/antoniovieira1/api-solicitacao-servico/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// rolePriority decides which assignment wins for users holding more than
// one role.
var rolePriority = []string{
	models.RoleAdministrator,
	models.RolePcm,
	models.RoleSafety,
	models.RoleCipa,
	models.RoleLaboratory,
}

// resolveRole returns the strongest role assigned to email, defaulting to
// requester for anyone the access table does not know.
func resolveRole(db *gorm.DB, email string) string {
	var roles []string
	if err := db.Model(&models.RoleAssignment{}).
		Where("email = ?", email).
		Pluck("role", &roles).Error; err != nil {
		log.Printf("⚠️ Falha ao consultar papeis de %s: %v", email, err)
		return models.RoleRequester
	}
	for _, candidate := range rolePriority {
		for _, role := range roles {
			if role == candidate {
				return candidate
			}
		}
	}
	return models.RoleRequester
}

// Login - POST /api/login
// Authenticates against the employee directory and hands out a session
// token carrying the user's role.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "email e senha sao obrigatorios",
		})
		return
	}

	user, ok := Directory.Find(email)
	if !ok || !user.Authorized() {
		respondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "credenciais invalidas",
		})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "credenciais invalidas",
		})
		return
	}

	role := resolveRole(config.DB, email)
	token, err := middleware.GenerateToken(email, user.Name, role)
	if err != nil {
		respondError(w, err)
		return
	}

	log.Printf("✅ Login: %s (%s)", email, role)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    sessionUser{Email: email, Name: user.Name, Role: role},
	})
}

// Me - GET /api/me
// Returns the session identity from the token.
func Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    sessionUser{Email: claims.Email, Name: claims.Name, Role: claims.Role},
	})
}

// Logout - POST /api/logout
// Sessions are stateless; the client discards the token.
func Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "sessao encerrada",
	})
}
