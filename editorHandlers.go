package main

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/editorhandoff"
)

type editorRequest struct {
	Token    editorhandoff.EditToken `json:"token"`
	Document json.RawMessage         `json:"document"`
	Image    string                  `json:"image"`
}

func bindEditorRequest(c *gin.Context) (editorRequest, bool) {
	var req editorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return req, false
	}
	return req, true
}

// beginEditHandler opens color :index in the editor and hands back the
// token every later editor call must carry.
func (s *server) beginEditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}
		var token editorhandoff.EditToken
		st, err := s.handoff.Update(c.Request.Context(), sessionID(c), func(st *editorhandoff.State) error {
			var err error
			token, err = st.Begin(index)
			return err
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		response := gin.H{"token": token, "editorData": st.EditorData}
		if st.TemplateImage != nil {
			response["templateImage"] = st.TemplateImage.Display()
		}
		c.JSON(http.StatusOK, response)
	}
}

// enterEditorHandler returns the design the editor should open with; a
// null design means a blank canvas.
func (s *server) enterEditorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindEditorRequest(c)
		if !ok {
			return
		}
		st, err := s.handoff.Get(c.Request.Context(), sessionID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		editor := &editorhandoff.PostedDesign{}
		if err := st.Enter(c.Request.Context(), req.Token, editor); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"design": editor.Loaded(), "colorIndex": req.Token.Index})
	}
}

func (s *server) saveEditorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindEditorRequest(c)
		if !ok {
			return
		}
		editor := &editorhandoff.PostedDesign{Document: req.Document, Image: req.Image}
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			return st.Save(c.Request.Context(), req.Token, editor)
		})
	}
}

// returnToFormHandler writes the saved design into its color and clears
// the handoff bundle.
func (s *server) returnToFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			return st.Consume(c.Request.Context(), s.previews)
		})
	}
}

func (s *server) cancelEditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.updateForm(c, http.StatusOK, func(st *editorhandoff.State) error {
			st.Cancel()
			return nil
		})
	}
}
