package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// formRequest is a request body that can also arrive as a url-encoded form.
type formRequest interface {
	fromForm(form url.Values)
}

type selectionRequest struct {
	Specialty []string `json:"specialty" validate:"max=10000,dive,max=512"`
	Code      []string `json:"code" validate:"max=10000,dive,max=512"`
}

func (req *selectionRequest) fromForm(form url.Values) {
	req.Specialty = form["specialty"]
	req.Code = form["code"]
}

// figuresRequest updates the column pickers. Blank fields keep the
// current choice.
type figuresRequest struct {
	Pie      string `json:"pie" validate:"max=512"`
	HistX    string `json:"hist_x" validate:"max=512"`
	HistY    string `json:"hist_y" validate:"max=512"`
	HeatmapX string `json:"heatmap_x" validate:"max=512"`
	HeatmapY string `json:"heatmap_y" validate:"max=512"`
}

func (req *figuresRequest) fromForm(form url.Values) {
	req.Pie = form.Get("pie")
	req.HistX = form.Get("hist_x")
	req.HistY = form.Get("hist_y")
	req.HeatmapX = form.Get("heatmap_x")
	req.HeatmapY = form.Get("heatmap_y")
}

// merge overlays the request on the current pickers.
func (req figuresRequest) merge(current core.FigureColumns) core.FigureColumns {
	pick := func(v, cur string) string {
		if v == "" {
			return cur
		}
		return v
	}
	return core.FigureColumns{
		Pie:      pick(req.Pie, current.Pie),
		HistX:    pick(req.HistX, current.HistX),
		HistY:    pick(req.HistY, current.HistY),
		HeatmapX: pick(req.HeatmapX, current.HeatmapX),
		HeatmapY: pick(req.HeatmapY, current.HeatmapY),
	}
}

type saveRequest struct {
	Path string `json:"path" validate:"max=4096"`
}

func (req *saveRequest) fromForm(form url.Values) {
	req.Path = strings.TrimSpace(form.Get("path"))
}

type rowsQuery struct {
	Limit int `json:"limit" validate:"gte=1,lte=100000"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode fills req from a JSON body or a url-encoded form and validates it.
func (s *Server) decode(r *http.Request, req formRequest) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := render.DecodeJSON(r.Body, req); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		req.fromForm(r.PostForm)
	}
	return s.check(req)
}

// check validates a decoded request.
func (s *Server) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid request: %w", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = validationMessage(fe)
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
