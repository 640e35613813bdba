package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
	"resume-render/internal/model"
	"resume-render/internal/preview"
	"resume-render/internal/render"
	"resume-render/internal/usecase"
)

const accessLocal = "access"

// Handler serves the resume API.
type Handler struct {
	editors  *usecase.EditorRegistry
	ents     *usecase.EntitlementService
	checkout *usecase.Checkout
	exports  *usecase.ExportService
	log      *logger.Logger
}

func NewHandler(editors *usecase.EditorRegistry, ents *usecase.EntitlementService,
	checkout *usecase.Checkout, exports *usecase.ExportService, log *logger.Logger) *Handler {
	return &Handler{editors: editors, ents: ents, checkout: checkout, exports: exports, log: log}
}

// Register mounts every route on r. SessionMiddleware must run first.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/:id", h.GetTemplate)
	r.Get("/templates/:id/preview", h.TemplatePreview)

	ed := r.Group("/editor/:id", h.gate)
	ed.Get("/", h.OpenEditor)
	ed.Get("/data", h.EditorData)
	ed.Patch("/fields", h.SetField)
	ed.Post("/lists/:list", h.AppendListItem)
	ed.Delete("/lists/:list/:itemID", h.RemoveListItem)
	ed.Post("/reset", h.ResetEditor)
	ed.Post("/summary", h.GenerateSummary)
	ed.Get("/preview", h.EditorPreview)
	ed.Get("/export/:format", h.Export)

	r.Get("/purchases", h.Purchases)

	r.Get("/buy/:id/quote", h.Quote)
	r.Post("/buy/:id/checkout", h.StartCheckout)
	r.Post("/buy/:id/claim", h.ClaimFree)
	r.Post("/buy/:id/complete", h.CompleteCheckout)
}

func templateID(c *fiber.Ctx) domain.TemplateID {
	return domain.TemplateID(c.Params("id"))
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(render.List())
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	t, ok := render.Find(templateID(c))
	if !ok {
		return h.writeError(c, fmt.Errorf("%w: %s", render.ErrTemplateNotFound, templateID(c)))
	}
	return c.JSON(t)
}

// TemplatePreview renders the catalog thumbnail: the template filled with the
// placeholder resume.
func (h *Handler) TemplatePreview(c *fiber.Ctx) error {
	return h.sendPreview(c, templateID(c), model.Default())
}

// gate decides whether the editor for :id may be used by this session.
// Page loads are redirected; API calls get 403 with the location.
func (h *Handler) gate(c *fiber.Ctx) error {
	access := h.ents.EditorAccess(c.UserContext(), sessionOf(c), templateID(c))
	if !access.Allowed {
		if c.Method() == fiber.MethodGet {
			return c.Redirect(access.Redirect, fiber.StatusFound)
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "template not available", "redirect": access.Redirect})
	}
	c.Locals(accessLocal, access)
	return c.Next()
}

func (h *Handler) editor(c *fiber.Ctx) (*usecase.Editor, error) {
	return h.editors.Get(c.UserContext(), sessionOf(c).DeviceID, templateID(c))
}

func (h *Handler) OpenEditor(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	access, _ := c.Locals(accessLocal).(usecase.Access)
	return c.JSON(fiber.Map{"template": access.Template, "data": ed.Data(), "dirty": ed.Dirty()})
}

func (h *Handler) EditorData(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(ed.Data())
}

type setFieldReq struct {
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

func (h *Handler) SetField(c *fiber.Ctx) error {
	var req setFieldReq
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := ed.SetField(req.Path, req.Value); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(ed.Data())
}

// AppendListItem takes an optional JSON body: a partial entry for entity
// lists, a string for skills.
func (h *Handler) AppendListItem(c *fiber.Ctx) error {
	var item interface{}
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &item); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
	}
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := ed.AppendListItem(c.Params("list"), item)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) RemoveListItem(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := ed.RemoveListItem(c.Params("list"), c.Params("itemID")); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ResetEditor(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	if err := ed.Reset(); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(ed.Data())
}

func (h *Handler) GenerateSummary(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	summary, err := ed.GenerateSummary(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"summary": summary})
}

func (h *Handler) EditorPreview(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.sendPreview(c, templateID(c), ed.Data())
}

// sendPreview renders data with template id inside the scaled frame for the
// "width" query parameter. Without a width the frame stays hidden.
func (h *Handler) sendPreview(c *fiber.Ctx, id domain.TemplateID, data model.ResumeData) error {
	var st preview.State
	if c.Query("width") != "" {
		var ok bool
		st, ok = preview.Compute(c.QueryFloat("width"))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "width must be a positive number"})
		}
	}
	page, err := render.RenderString(id, data)
	if err != nil {
		return h.writeError(c, err)
	}
	out, err := preview.Wrap(st, template.HTML(page))
	if err != nil {
		return h.writeError(c, err)
	}
	c.Type("html")
	return c.SendString(out)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return h.writeError(c, err)
	}
	file, err := h.exports.Export(c.UserContext(), sessionOf(c), templateID(c), ed.Data(), usecase.Format(c.Params("format")))
	if err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}

// Purchases lists the templates owned by the signed-in user.
func (h *Handler) Purchases(c *fiber.Ctx) error {
	sess := sessionOf(c)
	if !sess.Authenticated() {
		return h.writeError(c, usecase.ErrNotLoggedIn)
	}
	owned := h.ents.Owned(c.UserContext(), sess)
	templates := make([]domain.Template, 0, len(owned.TemplateIDs))
	for _, id := range owned.TemplateIDs {
		if t, ok := render.Find(domain.TemplateID(id)); ok {
			templates = append(templates, t)
		}
	}
	resp := fiber.Map{"templates": templates}
	if owned.Degraded {
		resp["notice"] = degradedNotice
	}
	return c.JSON(resp)
}

func (h *Handler) Quote(c *fiber.Ctx) error {
	q, err := h.checkout.Quote(templateID(c), c.Query("coupon"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(q)
}

type couponReq struct {
	Coupon string `json:"coupon"`
}

func parseCoupon(c *fiber.Ctx) (string, bool) {
	var req couponReq
	if len(c.Body()) == 0 {
		return "", true
	}
	if err := c.BodyParser(&req); err != nil {
		return "", false
	}
	return req.Coupon, true
}

func (h *Handler) StartCheckout(c *fiber.Ctx) error {
	coupon, ok := parseCoupon(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	order, err := h.checkout.Start(c.UserContext(), sessionOf(c), templateID(c), coupon)
	if errors.Is(err, usecase.ErrNotLoggedIn) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "redirect": loginRedirect("/buy/" + c.Params("id"))})
	}
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *Handler) ClaimFree(c *fiber.Ctx) error {
	coupon, ok := parseCoupon(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	res, err := h.checkout.ClaimFree(c.UserContext(), sessionOf(c), templateID(c), coupon)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(grantResponse(templateID(c), res))
}

func (h *Handler) CompleteCheckout(c *fiber.Ctx) error {
	var out domain.Outcome
	if err := c.BodyParser(&out); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	res, err := h.checkout.Complete(c.UserContext(), sessionOf(c), templateID(c), out)
	if err != nil {
		return h.writeError(c, err)
	}
	if out.Status == domain.OutcomeDismissed {
		return c.JSON(fiber.Map{"status": out.Status})
	}
	return c.JSON(grantResponse(templateID(c), res))
}

func grantResponse(id domain.TemplateID, res usecase.GrantResult) fiber.Map {
	resp := fiber.Map{
		"replicated": res.Replicated,
		"pending":    res.Pending,
		"redirect":   "/editor/" + string(id),
	}
	if res.Pending {
		resp["notice"] = pendingNotice
	}
	return resp
}
