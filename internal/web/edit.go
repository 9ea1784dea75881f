package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/metrics"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// Form actions of the edit page.
const (
	actionUpdate = "update"
	actionAdd    = "add"
	actionSave   = "save"
	actionRemove = "remove-"
)

var projectFields = []string{domain.FieldTitle, domain.FieldDescription, domain.FieldLink}

func (h *Handler) editPage(c *gin.Context) {
	id, _ := identity.FromGin(c)
	sid := h.editSessionID(c)

	sess, err := h.editor.Open(c.Request.Context(), id, sid)
	if abandoned(c) {
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}

	h.renderEdit(c, http.StatusOK, sess, "")
}

// editSubmit applies the posted form to the draft and then runs the pressed
// button's action.
func (h *Handler) editSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := identity.FromGin(c)
	sid := h.editSessionID(c)

	action := c.DefaultPostForm("action", actionUpdate)

	sess, err := h.editor.Apply(ctx, id, sid, func(d *domain.Draft) error {
		if err := applyForm(c, d); err != nil {
			return err
		}
		switch {
		case action == actionAdd:
			d.AddProject()
		case strings.HasPrefix(action, actionRemove):
			index, err := strconv.Atoi(strings.TrimPrefix(action, actionRemove))
			if err != nil {
				return domain.ErrProjectIndex
			}
			if _, err := d.RemoveProject(index); err != nil {
				return err
			}
		}
		return nil
	})
	if abandoned(c) {
		return
	}
	if err != nil {
		if sess == nil {
			renderError(c, err)
			return
		}
		status, msg := httpapi.ErrorResponse(err)
		h.renderEdit(c, status, sess, msg)
		return
	}

	if action != actionSave {
		c.Redirect(http.StatusSeeOther, "/edit")
		return
	}

	_, err = h.editor.Save(ctx, id, sid)
	metrics.ObserveProfileOp("save", err)
	if err != nil {
		if errors.Is(err, editor.ErrSaveInProgress) {
			c.Redirect(http.StatusSeeOther, "/edit")
			return
		}
		// The failed session keeps the draft; show it again for a retry.
		failed, openErr := h.editor.Open(ctx, id, sid)
		if openErr != nil {
			renderError(c, err)
			return
		}
		status, _ := httpapi.ErrorResponse(err)
		h.renderEdit(c, status, failed, failed.LastError)
		return
	}

	c.Redirect(http.StatusSeeOther, "/preview")
}

// applyForm copies the posted values onto the draft. Fields missing from the
// form are left alone; read-only fields are never read from it.
func applyForm(c *gin.Context, d *domain.Draft) error {
	for _, field := range []string{domain.FieldName, domain.FieldRole, domain.FieldBio} {
		if v, ok := c.GetPostForm(field); ok {
			if err := d.SetField(field, strings.TrimSpace(v)); err != nil {
				return err
			}
		}
	}

	for i := range d.Record.Projects {
		for _, field := range projectFields {
			if v, ok := c.GetPostForm(projectFieldName(i, field)); ok {
				if err := d.SetProjectField(i, field, strings.TrimSpace(v)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (h *Handler) renderEdit(c *gin.Context, status int, sess *editor.Session, msg string) {
	if msg == "" && sess.State == editor.StateFailed {
		msg = sess.LastError
	}
	c.HTML(status, "edit.html", gin.H{
		"Title":     "Edit Your Portfolio",
		"Session":   sess,
		"Record":    sess.Draft.Record,
		"Roles":     domain.Roles,
		"CanRemove": sess.CanRemoveProject(),
		"Saving":    sess.State == editor.StateSaving,
		"Error":     msg,
	})
}

// editSessionID returns the browser's edit-session id, issuing one if needed.
func (h *Handler) editSessionID(c *gin.Context) string {
	if sid, err := c.Cookie(editSessionCookie); err == nil && sid != "" && len(sid) <= 64 {
		return sid
	}
	sid := editor.NewSessionID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(editSessionCookie, sid, 0, "/", "", h.secure, true)
	return sid
}

func (h *Handler) clearEditSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(editSessionCookie, "", -1, "/", "", h.secure, true)
}
