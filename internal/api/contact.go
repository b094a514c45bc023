package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/portfolio-assistant/internal/contact"
	"github.com/ashureev/portfolio-assistant/internal/shared"
)

const maxListLimit = 1000

// ContactService stores and lists contact submissions.
type ContactService interface {
	Submit(ctx context.Context, sub contact.Submission) (*contact.Contact, error)
	List(ctx context.Context, limit int) ([]contact.Contact, error)
}

// MessageRefiner rewrites a rough inquiry.
type MessageRefiner interface {
	Refine(ctx context.Context, message string) (string, error)
}

// ContactHandler serves the contact form endpoints.
type ContactHandler struct {
	contacts ContactService
	refiner  MessageRefiner
	debug    bool
}

// NewContactHandler creates a contact handler. A nil refiner disables
// the refine route.
func NewContactHandler(contacts ContactService, refiner MessageRefiner, debug bool) *ContactHandler {
	return &ContactHandler{contacts: contacts, refiner: refiner, debug: debug}
}

// ContactRequest is the contact form body. Both projectType and
// project_type are accepted.
type ContactRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Company          string `json:"company"`
	Subject          string `json:"subject"`
	ProjectType      string `json:"projectType"`
	ProjectTypeSnake string `json:"project_type"`
	Budget           string `json:"budget"`
	Timeline         string `json:"timeline"`
	Message          string `json:"message"`
}

func (r ContactRequest) submission() contact.Submission {
	projectType := r.ProjectType
	if projectType == "" {
		projectType = r.ProjectTypeSnake
	}
	return contact.Submission{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		Subject:     r.Subject,
		ProjectType: projectType,
		Budget:      r.Budget,
		Timeline:    r.Timeline,
		Message:     r.Message,
	}
}

// ContactResponse acknowledges a stored submission.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RefineRequest is the body of the refine endpoint.
type RefineRequest struct {
	Message string `json:"message"`
}

// RefineResponse carries the rewritten message.
type RefineResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// ContactListResponse wraps the admin listing.
type ContactListResponse struct {
	Success bool              `json:"success"`
	Data    []contact.Contact `json:"data"`
}

// RegisterRoutes registers the public contact routes.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/contact", func(r chi.Router) {
		r.Post("/", h.Submit)
		if h.refiner != nil {
			r.Post("/refine", h.Refine)
		}
	})
}

// RegisterAdminRoutes registers the contact listing behind auth.
func (h *ContactHandler) RegisterAdminRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth)
		r.Get("/contacts", h.List)
	})
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[ContactRequest](w, r)
	if err != nil {
		WriteError(w, r, err, h.debug)
		return
	}

	if _, err := h.contacts.Submit(r.Context(), req.submission()); err != nil {
		WriteError(w, r, err, h.debug)
		return
	}

	JSON(w, http.StatusOK, ContactResponse{
		Success: true,
		Message: "Thank you! Your message has been received.",
	})
}

// Refine handles POST /api/contact/refine.
func (h *ContactHandler) Refine(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[RefineRequest](w, r)
	if err != nil {
		WriteError(w, r, err, h.debug)
		return
	}

	refined, err := h.refiner.Refine(r.Context(), req.Message)
	if err != nil {
		WriteError(w, r, err, h.debug)
		return
	}

	JSON(w, http.StatusOK, RefineResponse{Success: true, Response: refined})
}

// List handles GET /api/admin/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := contact.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, r, shared.Validation("limit must be a positive integer"), h.debug)
			return
		}
		limit = min(n, maxListLimit)
	}

	contacts, err := h.contacts.List(r.Context(), limit)
	if err != nil {
		WriteError(w, r, err, h.debug)
		return
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}

	JSON(w, http.StatusOK, ContactListResponse{Success: true, Data: contacts})
}
