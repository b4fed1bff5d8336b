package main

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/symptom"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
}).ParseFS(templatesFS, "templates/*.html"))

const (
	exampleSymptoms = "I have been experiencing a skin rash on my arms and legs. It is red, itchy, and covered in dry, " +
		"scaly patches. There is also joint pain in my fingers and wrists."
	formWarning = "Please enter some symptoms to get a prediction."
)

type pageData struct {
	Tab        string
	Example    string
	Disclaimer string

	Symptoms string
	Warning  string
	Error    string
	Result   *symptom.Result

	Message string
	Reply   string
}

func newPage(tab string) pageData {
	return pageData{Tab: tab, Example: exampleSymptoms, Disclaimer: symptom.Disclaimer}
}

func (h *apiHandler) formPage(c *gin.Context) {
	tab := "predict"
	if c.Query("tab") == "chat" {
		tab = "chat"
	}
	c.HTML(http.StatusOK, "index.html", newPage(tab))
}

func (h *apiHandler) formPredict(c *gin.Context) {
	page := newPage("predict")
	page.Symptoms = c.PostForm("symptoms")

	if strings.TrimSpace(page.Symptoms) == "" {
		page.Warning = formWarning
		c.HTML(http.StatusOK, "index.html", page)
		return
	}

	result, err := h.predictor.Predict(page.Symptoms)
	if err != nil {
		h.logger.Error("prediction failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("source", "form"),
			zap.Error(err))
		page.Error = fmt.Sprintf("An error occurred during prediction: %v", err)
		c.HTML(http.StatusOK, "index.html", page)
		return
	}

	h.trail.Save(c.Request.Context(), "form", page.Symptoms, result)
	page.Result = result
	c.HTML(http.StatusOK, "index.html", page)
}

func (h *apiHandler) formChat(c *gin.Context) {
	page := newPage("chat")
	page.Message = c.PostForm("message")
	page.Reply = h.responder.Respond(page.Message)
	c.HTML(http.StatusOK, "index.html", page)
}
