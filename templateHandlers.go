package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/editorhandoff"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/taxonomy"
	"github.com/weddingcard/card_admin/templateform"
)

// formView is the template form as the admin UI renders it.
type formView struct {
	Form              *templateform.Form       `json:"form"`
	Images            [][]string               `json:"images"`
	Phase             editorhandoff.Phase      `json:"phase"`
	CurrentColorIndex int                      `json:"currentColorIndex"`
	Token             *editorhandoff.EditToken `json:"token,omitempty"`
}

func newFormView(st *editorhandoff.State) formView {
	view := formView{
		Form:              st.FormData,
		Phase:             st.Phase,
		CurrentColorIndex: st.CurrentColorIndex,
		Token:             st.Token,
	}
	if st.FormData != nil {
		view.Images = make([][]string, len(st.FormData.Colors))
		for i, color := range st.FormData.Colors {
			view.Images[i] = make([]string, len(color.TemplateImages))
			for j, img := range color.TemplateImages {
				view.Images[i][j] = img.Display()
			}
		}
	}
	return view
}

// updateForm runs fn on the session's handoff state and replies with the
// resulting form, or with the mapped error.
func (s *server) updateForm(c *gin.Context, status int, fn func(*editorhandoff.State) error) {
	st, err := s.handoff.Update(c.Request.Context(), sessionID(c), func(st *editorhandoff.State) error {
		if st.FormData == nil {
			st.FormData = templateform.New()
		}
		return fn(st)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, newFormView(st))
}

// templates

func (s *server) listTemplatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		templates, err := s.client(c).ListTemplates(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": templates})
	}
}

// getTemplateHandler returns a template with the taxonomy chain of its type.
func (s *server) getTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tpl, err := s.client(c).GetTemplate(ctx, c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		response := gin.H{"data": tpl}
		if tpl.Type != nil && tpl.Type.ID != "" {
			store, err := taxonomy.Load(ctx, s.client(c))
			if err != nil {
				s.fail(c, err)
				return
			}
			if path, err := store.ResolveTypeID(tpl.Type.ID); err == nil {
				response["path"] = path
			}
		}
		c.JSON(http.StatusOK, response)
	}
}

func (s *server) deleteTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !confirmed(c) {
			s.fail(c, taxonomy.ErrNotConfirmed)
			return
		}
		if err := s.client(c).DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Template", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// template form

func (s *server) formHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := s.handoff.Get(c.Request.Context(), sessionID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":            newFormView(st),
			"colorDictionary": templateform.Dictionary(),
		})
	}
}

func (s *server) newFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.ReplaceForm(c.Request.Context(), templateform.New(), s.previews)
			return nil
		})
	}
}

func (s *server) loadFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tpl, err := s.client(c).GetTemplate(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.ReplaceForm(c.Request.Context(), templateform.Load(tpl), s.previews)
			return nil
		})
	}
}

func (s *server) updateFieldsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields templateform.Fields
		if err := c.ShouldBindJSON(&fields); err != nil {
			badRequest(c, "invalid request")
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.FormData.SetFields(fields)
			return nil
		})
	}
}

func (s *server) addTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Tag string `json:"tag"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.FormData.AddTag(input.Tag)
			return nil
		})
	}
}

func (s *server) removeTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := c.Param("tag")
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.FormData.RemoveTag(tag)
			return nil
		})
	}
}

func (s *server) addColorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.updateForm(c, http.StatusCreated, func(st *editorhandoff.State) error {
			st.FormData.AddColorVariant()
			return nil
		})
	}
}

// updateColorHandler sets the name or the hex of a color; the other one is
// filled from the dictionary when it knows the value.
func (s *server) updateColorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}
		var input struct {
			Color *string `json:"color"`
			Hex   *string `json:"hex"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			if input.Color != nil {
				if err := st.FormData.SetColorName(index, strings.TrimSpace(*input.Color)); err != nil {
					return err
				}
			}
			if input.Hex != nil {
				if err := st.FormData.SetColorHex(index, strings.TrimSpace(*input.Hex)); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

func (s *server) removeColorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			return st.RemoveColor(c.Request.Context(), index, s.previews)
		})
	}
}

func (s *server) removeImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}
		image, ok := pathIndex(c, "image")
		if !ok {
			return
		}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			return st.FormData.RemoveImage(c.Request.Context(), index, image, s.previews)
		})
	}
}

func (s *server) submitFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			saved   *models.Template
			updated bool
		)
		_, err := s.handoff.Update(ctx, sessionID(c), func(st *editorhandoff.State) error {
			if st.FormData == nil {
				return editorhandoff.ErrNoFormLoaded
			}
			updated = st.FormData.TemplateID != ""
			tpl, err := st.FormData.Submit(ctx, s.client(c), s.previews)
			if err != nil {
				return err
			}
			// the form is back to its empty shape; an open edit belonged to the old one
			st.Cancel()
			saved = tpl
			return nil
		})
		if err != nil {
			s.fail(c, err)
			return
		}

		action, status := models.ActionCreate, http.StatusCreated
		if updated {
			action, status = models.ActionUpdate, http.StatusOK
		}
		s.record(c, models.NewActivity{ActionType: action, ReferenceType: "Template", ReferenceID: saved.ID, After: saved})
		c.JSON(status, gin.H{"data": saved})
	}
}
