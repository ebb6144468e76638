package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"promptdesk/internal/auth"
	"promptdesk/internal/history"
	"promptdesk/internal/models"
	"promptdesk/internal/service/account"
	"promptdesk/internal/service/prompt"
)

// generateTimeout bounds the outbound model call per request.
const generateTimeout = 2 * time.Minute

// maxUploadBytes caps the multipart form size.
const maxUploadBytes = 10 << 20 // 10 MB

// AnswerGenerator produces a raw answer for assembled content parts.
type AnswerGenerator interface {
	Generate(ctx context.Context, parts []models.ContentPart) (string, error)
}

// HistoryStore persists and reads the per-user exchange log.
type HistoryStore interface {
	Append(ctx context.Context, userID int64, prompt, answer string) error
	Recent(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error)
	Available() bool
}

// Handler wires the HTTP routes to the request-to-answer pipeline.
type Handler struct {
	accounts  *account.Service
	auth      *auth.Service
	history   HistoryStore
	generator AnswerGenerator
}

// NewHandler constructs a Handler instance.
func NewHandler(accounts *account.Service, authService *auth.Service, historyStore HistoryStore, generator AnswerGenerator) *Handler {
	return &Handler{
		accounts:  accounts,
		auth:      authService,
		history:   historyStore,
		generator: generator,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	authMW := h.auth.PageMiddleware()
	csrfMW := h.auth.CSRFMiddleware()
	router.GET("/", authMW, h.showHome)
	router.POST("/", authMW, csrfMW, h.submitPrompt)
	router.GET("/signup", h.showSignup)
	router.POST("/signup", csrfMW, h.handleSignup)
	router.GET("/login", h.showLogin)
	router.POST("/login", csrfMW, h.handleLogin)
	router.GET("/logout", authMW, h.handleLogout)
}

func (h *Handler) showHome(c *gin.Context) {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.renderHome(c, user, "", nil, popFlashes(c))
}

// submitPrompt runs the full pipeline for one POST:
// load history, assemble input, classify, generate, persist, reload, format.
func (h *Handler) submitPrompt(c *gin.Context) {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	var notices []flash

	text := strings.TrimSpace(c.PostForm("text"))
	upload, err := h.readUpload(c)
	if err != nil {
		notices = append(notices, flash{Message: "Error processing file: " + err.Error(), Category: "danger"})
	}

	parts, fileErr := prompt.Assemble(text, upload)
	if fileErr != nil {
		notices = append(notices, flash{Message: fileErr.Error(), Category: "danger"})
	}
	if len(parts) == 0 {
		notices = append(notices, flash{Message: "Please enter a question or upload a file.", Category: "warning"})
		h.renderHome(c, user, text, nil, notices)
		return
	}

	kind := prompt.Classify(text)

	genCtx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()
	rawAnswer, err := h.generator.Generate(genCtx, parts)
	if err != nil {
		log.Printf("generation failed for user %d: %v", user.ID, err)
		notices = append(notices, flash{Message: "Sorry, the assistant couldn't process your request. Try again!", Category: "danger"})
		h.renderHome(c, user, text, nil, notices)
		return
	}

	if err := h.history.Append(c.Request.Context(), user.ID, text, rawAnswer); err != nil {
		log.Printf("history append failed for user %d: %v", user.ID, err)
	}

	rendered := prompt.Format(rawAnswer, kind)
	h.renderHome(c, user, text, &rendered, notices)
}

// renderHome loads the latest history so a freshly persisted entry shows
// up in the same response.
func (h *Handler) renderHome(c *gin.Context, user *models.User, text string, rendered *models.RenderedAnswer, notices []flash) {
	entries, err := h.history.Recent(c.Request.Context(), user.ID, history.DefaultLimit)
	if err != nil {
		log.Printf("history fetch failed for user %d: %v", user.ID, err)
		entries = nil
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Username":  user.Username,
		"Prompt":    text,
		"Rendered":  rendered,
		"History":   entries,
		"Flashes":   notices,
		"CSRFToken": h.ensureCSRFCookie(c),
	})
}

func (h *Handler) readUpload(c *gin.Context) (*prompt.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fileHeader.Filename == "" {
		return nil, nil
	}
	if fileHeader.Size > maxUploadBytes {
		return nil, errors.New("file too large")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &prompt.Upload{
		Filename: fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func (h *Handler) showSignup(c *gin.Context) {
	if h.currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "signup.html", gin.H{
		"Flashes":   popFlashes(c),
		"Username":  "",
		"CSRFToken": h.ensureCSRFCookie(c),
	})
}

func (h *Handler) handleSignup(c *gin.Context) {
	if h.currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	_, err := h.accounts.Register(c.Request.Context(), username, password, confirm)
	if err != nil {
		message := err.Error()
		if !isExpectedAccountError(err) {
			log.Printf("signup failed: %v", err)
			message = "Sign up failed. Please try again later."
		}
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"Flashes":   []flash{{Message: message, Category: "danger"}},
			"Username":  username,
			"CSRFToken": h.ensureCSRFCookie(c),
		})
		return
	}
	setFlash(c, flash{Message: "Account created successfully. You can now log in.", Category: "success"})
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) showLogin(c *gin.Context) {
	if h.currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flashes":   popFlashes(c),
		"Username":  "",
		"CSRFToken": h.ensureCSRFCookie(c),
	})
}

func (h *Handler) handleLogin(c *gin.Context) {
	if h.currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.accounts.Login(c.Request.Context(), username, password)
	if err != nil {
		message := err.Error()
		if !isExpectedAccountError(err) {
			log.Printf("login failed: %v", err)
			message = account.ErrInvalidCredentials.Error()
		}
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Flashes":   []flash{{Message: message, Category: "danger"}},
			"Username":  username,
			"CSRFToken": h.ensureCSRFCookie(c),
		})
		return
	}

	authToken, err := h.auth.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("issue token failed for user %d: %v", user.ID, err)
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Flashes":   []flash{{Message: "Login failed. Please try again later.", Category: "danger"}},
			"CSRFToken": h.ensureCSRFCookie(c),
		})
		return
	}
	h.setAuthCookie(c, authToken)
	setFlash(c, flash{Message: "Welcome back, " + user.Username + "!", Category: "success"})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(h.auth.AuthCookieName()); err == nil && token != "" {
		if err := h.auth.RevokeToken(c.Request.Context(), token); err != nil {
			log.Printf("revoke token failed: %v", err)
		}
	}
	h.clearAuthCookie(c)
	setFlash(c, flash{Message: "You have been logged out.", Category: "info"})
	c.Redirect(http.StatusFound, "/login")
}

// currentUser resolves the session cookie without redirecting, for routes
// that behave differently when already logged in.
func (h *Handler) currentUser(c *gin.Context) *models.User {
	token, err := c.Cookie(h.auth.AuthCookieName())
	if err != nil || token == "" {
		return nil
	}
	user, err := h.auth.Resolve(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func isExpectedAccountError(err error) bool {
	return errors.Is(err, account.ErrUsernameTaken) ||
		errors.Is(err, account.ErrFieldsRequired) ||
		errors.Is(err, account.ErrPasswordMismatch) ||
		errors.Is(err, account.ErrPasswordTooShort) ||
		errors.Is(err, account.ErrInvalidCredentials) ||
		errors.Is(err, account.ErrStoreUnavailable)
}

func (h *Handler) setAuthCookie(c *gin.Context, authToken string) {
	ttl := int(h.auth.TokenTTL().Seconds())
	if ttl <= 0 {
		ttl = 3600
	}
	secure := gin.Mode() == gin.ReleaseMode
	setCookie(c, &http.Cookie{
		Name:     h.auth.AuthCookieName(),
		Value:    authToken,
		MaxAge:   ttl,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookie(c *gin.Context) {
	setCookie(c, &http.Cookie{
		Name:     h.auth.AuthCookieName(),
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		Secure:   gin.Mode() == gin.ReleaseMode,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ensureCSRFCookie returns the double-submit token for form pages, minting
// the cookie when absent.
func (h *Handler) ensureCSRFCookie(c *gin.Context) string {
	if token, err := c.Cookie(h.auth.CSRFCookieName()); err == nil && token != "" {
		return token
	}
	token, err := h.auth.NewCSRFToken()
	if err != nil {
		log.Printf("csrf token generation failed: %v", err)
		return ""
	}
	setCookie(c, &http.Cookie{
		Name:     h.auth.CSRFCookieName(),
		Value:    token,
		MaxAge:   int(h.auth.TokenTTL().Seconds()),
		Path:     "/",
		Secure:   gin.Mode() == gin.ReleaseMode,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

func setCookie(c *gin.Context, ck *http.Cookie) {
	if ck == nil {
		return
	}
	http.SetCookie(c.Writer, ck)
}
