package handler

import (
	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ListingHandler struct {
	engine *moderation.Engine
}

type listingRequest struct {
	CompanyID   uuid.UUID `json:"company_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	IndustryID  uuid.UUID `json:"industry_id"`
	SalaryMin   *int      `json:"salary_min"`
	SalaryMax   *int      `json:"salary_max"`
}

func (r listingRequest) content() listing.Content {
	return listing.Content{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		IndustryID:  r.IndustryID,
		SalaryMin:   r.SalaryMin,
		SalaryMax:   r.SalaryMax,
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type suspendRequest struct {
	Reason   string     `json:"reason"`
	ReportID *uuid.UUID `json:"report_id"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type appealRequest struct {
	Explanation string `json:"explanation"`
}

func NewListingHandler(engine *moderation.Engine) *ListingHandler {
	return &ListingHandler{engine: engine}
}

func (h *ListingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	admin := middleware.RequireRole(user.RoleAdmin)
	employer := middleware.RequireRole(user.RoleEmployer)

	r.Get("/", admin, h.List)
	r.Post("/", employer, h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", employer, h.Edit)
	r.Delete("/:id", middleware.RequireRole(user.RoleAdmin, user.RoleEmployer), h.Delete)

	r.Post("/:id/approve", admin, h.Approve)
	r.Post("/:id/reject", admin, h.Reject)
	r.Post("/:id/suspend", admin, h.Suspend)
	r.Post("/:id/unsuspend", admin, h.Unsuspend)
	r.Post("/:id/appeal", employer, h.Appeal)
}

func screening(d moderation.Decision) dto.ScreeningResponse {
	out := dto.ScreeningResponse{Listing: dto.NewListingResponse(d.Listing), Degraded: d.Degraded}
	if d.Assessment != nil {
		score := d.Assessment.Score
		out.RiskScore = &score
	}
	return out
}

func (h *ListingHandler) Create(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req listingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	d, err := h.engine.CreateListing(c.Context(), actor, moderation.ListingInput{CompanyID: req.CompanyID, Content: req.content()})
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Listing submitted for screening", screening(d))
}

func (h *ListingHandler) Edit(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req listingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	d, err := h.engine.EditListing(c.Context(), actor, id, req.content())
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing updated", screening(d))
}

func (h *ListingHandler) Delete(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	reason := c.Query("reason")
	if reason == "" && len(c.Body()) > 0 {
		var req reasonRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		reason = req.Reason
	}

	if err := h.engine.DeleteListing(c.Context(), actor, id, reason); err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing deleted", fiber.Map{"id": id})
}

func (h *ListingHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	l, err := h.engine.GetListing(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewListingResponse(l))
}

func (h *ListingHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageQuery(c)
	if err != nil {
		return err
	}
	companyID, err := optionalUUIDQuery(c, "company_id")
	if err != nil {
		return err
	}
	f := listing.Filter{CompanyID: companyID, Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := listing.Status(s)
		f.Status = &st
	}

	items, err := h.engine.ListListings(c.Context(), actor, f)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Paginated(c, dto.NewListingResponses(items), len(items), limit, offset)
}

func (h *ListingHandler) Approve(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	l, err := h.engine.AdminApprove(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing approved", dto.NewListingResponse(l))
}

func (h *ListingHandler) Reject(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req reasonRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	l, err := h.engine.AdminReject(c.Context(), actor, id, req.Reason)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing rejected", dto.NewListingResponse(l))
}

func (h *ListingHandler) Suspend(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req suspendRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	l, err := h.engine.Suspend(c.Context(), actor, id, req.Reason, req.ReportID)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing suspended", dto.NewListingResponse(l))
}

func (h *ListingHandler) Unsuspend(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req notesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}

	l, err := h.engine.AdminUnsuspend(c.Context(), actor, id, req.Notes)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Listing restored", dto.NewListingResponse(l))
}

// Appeal accepts JSON, or multipart with an "explanation" field and "files".
func (h *ListingHandler) Appeal(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var explanation string
	var files []moderation.File
	if isMultipart(c) {
		explanation = c.FormValue("explanation")
		if files, err = evidenceFiles(c); err != nil {
			return err
		}
	} else {
		var req appealRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		explanation = req.Explanation
	}

	res, err := h.engine.SubmitAppeal(c.Context(), actor, id, explanation, files)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Appeal submitted", fiber.Map{
		"appeal":  dto.NewAppealResponse(res.Appeal),
		"listing": dto.NewListingResponse(res.Listing),
		"upload":  dto.UploadResponse{Stored: res.Upload.Stored, Failed: res.Upload.Failed},
	})
}
