package handler

import (
	"blue-collar-portal/internal/delivery/http/dto"
	"blue-collar-portal/internal/delivery/http/middleware"
	"blue-collar-portal/internal/domain/report"
	"blue-collar-portal/internal/domain/user"
	"blue-collar-portal/internal/pkg/response"
	"blue-collar-portal/internal/usecase/moderation"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ReportHandler struct {
	engine *moderation.Engine
}

type fileReportRequest struct {
	ListingID   uuid.UUID `json:"listing_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

type reportActionRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func NewReportHandler(engine *moderation.Engine) *ReportHandler {
	return &ReportHandler{engine: engine}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	admin := middleware.RequireRole(user.RoleAdmin)

	r.Post("/", middleware.RequireRole(user.RoleJobSeeker), h.File)
	r.Get("/", admin, h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id", admin, h.Act)
	r.Post("/:id/review", admin, h.MarkUnderReview)
}

// File accepts JSON, or multipart with listing_id, type, description and
// "files".
func (h *ReportHandler) File(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	in := moderation.ReportInput{}
	if isMultipart(c) {
		id, err := uuid.Parse(c.FormValue("listing_id"))
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid listing_id", nil, err)
		}
		in.ListingID = id
		in.Type = report.Type(c.FormValue("type"))
		in.Description = c.FormValue("description")
		if in.Files, err = evidenceFiles(c); err != nil {
			return err
		}
	} else {
		var req fileReportRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		in.ListingID = req.ListingID
		in.Type = report.Type(req.Type)
		in.Description = req.Description
	}

	res, err := h.engine.FileReport(c.Context(), actor, in)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Report submitted", fiber.Map{
		"report": dto.NewReportResponse(res.Report),
		"upload": dto.UploadResponse{Stored: res.Upload.Stored, Failed: res.Upload.Failed},
	})
}

func (h *ReportHandler) List(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageQuery(c)
	if err != nil {
		return err
	}
	listingID, err := optionalUUIDQuery(c, "listing_id")
	if err != nil {
		return err
	}
	f := report.Filter{ListingID: listingID, Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := report.Status(s)
		f.Status = &st
	}

	items, err := h.engine.ListReports(c.Context(), actor, f)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Paginated(c, dto.NewReportResponses(items), len(items), limit, offset)
}

func (h *ReportHandler) Get(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	view, err := h.engine.GetReport(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	out := dto.NewReportResponse(view.Report)
	out.EvidenceURLs = view.EvidenceURLs
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ReportHandler) Act(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req reportActionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	rep, err := h.engine.ActOnReport(c.Context(), actor, id, moderation.ReportAction(req.Action), req.Notes)
	if err != nil {
		return mapModerationError(err)
	}
	msg := "Report resolved"
	if rep.Status == report.StatusDismissed {
		msg = "Report dismissed"
	}
	return response.Success(c, fiber.StatusOK, msg, dto.NewReportResponse(rep))
}

func (h *ReportHandler) MarkUnderReview(c fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.engine.MarkReportUnderReview(c.Context(), actor, id)
	if err != nil {
		return mapModerationError(err)
	}
	return response.Success(c, fiber.StatusOK, "Report under review", dto.NewReportResponse(rep))
}
