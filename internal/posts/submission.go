package posts

import (
	"blog-admin/internal/models"
	"blog-admin/internal/result"
	"errors"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const IntentDelete = "delete"

// Submission is the admin editor form, parsed once from the request.
// Intent is create, update or delete; anything but delete saves the post.
type Submission struct {
	Intent   string `form:"intent" json:"intent"`
	Title    string `form:"title" json:"title"`
	Slug     string `form:"slug" json:"slug"`
	Markdown string `form:"markdown" json:"markdown"`
}

// ParseSubmission binds the url-encoded or multipart form of c.
func ParseSubmission(c *gin.Context) (Submission, error) {
	var s Submission
	err := c.ShouldBind(&s)
	return s, err
}

func (s Submission) IsDelete() bool {
	return s.Intent == IntentDelete
}

// Validation is either Valid or Invalid.
type Validation interface {
	validation()
}

type Valid struct {
	Fields models.PostFields
}

// Invalid carries one message per failing field, keyed by form field name.
type Invalid struct {
	Errors result.FieldErrors
}

func (Valid) validation()   {}
func (Invalid) validation() {}

// Validate checks that title, slug and markdown are present.
func (s Submission) Validate() Validation {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required.Error("Title is required")),
		validation.Field(&s.Slug, validation.Required.Error("Slug is required")),
		validation.Field(&s.Markdown, validation.Required.Error("Markdown is required")),
	)
	if err == nil {
		return Valid{Fields: models.PostFields{Title: s.Title, Slug: s.Slug, Markdown: s.Markdown}}
	}

	fieldErrors := result.FieldErrors{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, e := range errs {
			fieldErrors[field] = e.Error()
		}
	} else {
		fieldErrors["form"] = err.Error()
	}
	return Invalid{Errors: fieldErrors}
}
